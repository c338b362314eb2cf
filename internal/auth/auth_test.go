package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"ok", "  john.garcia@example.com ", "secret1", ""},
		{"empty email", "", "secret1", "email"},
		{"no domain", "john@", "secret1", "email"},
		{"no tld", "john@example", "secret1", "email"},
		{"short password", "john@example.com", "12345", "password"},
		{"short password counted in characters", "john@example.com", "çöüşğ", "password"},
		{"six accented characters", "  john.garcia@example.com ", "çöüşğı", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := ValidateLogin(tt.email, tt.password)
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "john.garcia@example.com", email)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidationMessages(t *testing.T) {
	_, err := ValidateLogin("nope", "secret1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please enter a valid email address", verr.Message)

	_, err = ValidateLogin("a@b.co", "123")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Password must be at least 6 characters", verr.Message)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	raw, expires, err := issuer.Issue(20, "John Garcia")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 20, claims.MemberID)
	assert.Equal(t, "20", claims.Subject)
	assert.Equal(t, "John Garcia", claims.Name)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	raw, _, err := issuer.Issue(20, "John Garcia")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other-secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewTokenIssuer("test-secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newLoginService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	store := NewMemoryMemberStore(DemoMembers(string(hash))...)
	return NewService(store, NewTokenIssuer("test-secret", time.Hour), logging.Discard())
}

func TestLogin(t *testing.T) {
	svc := newLoginService(t)

	res, err := svc.Login(context.Background(), "John.Garcia@example.com", "secret1")
	require.NoError(t, err)
	assert.EqualValues(t, 20, res.MemberID)
	assert.Equal(t, DashboardPath, res.Redirect)

	session, err := svc.Authenticate(res.Token)
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated())
	assert.EqualValues(t, 20, session.MemberID())
}

func TestLoginFailures(t *testing.T) {
	svc := newLoginService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "john.garcia@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "bad", "secret1")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSessionFromContext(t *testing.T) {
	anon := SessionFromContext(context.Background())
	assert.False(t, anon.IsAuthenticated())
	assert.Zero(t, anon.MemberID())

	ctx := WithSession(context.Background(), Session{Claims: &Claims{MemberID: 20}})
	assert.EqualValues(t, 20, SessionFromContext(ctx).MemberID())
}

func TestPgMemberStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM members").
		WithArgs("john.garcia@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(int64(20), "John Garcia", "john.garcia@example.com", "hash"))
	mock.ExpectQuery("FROM members").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash"}))
	mock.ExpectQuery("FROM members").
		WithArgs("x@example.com").
		WillReturnError(errors.New("conn closed"))

	store := NewPgMemberStore(mock)
	ctx := context.Background()

	m, err := store.FindByEmail(ctx, "john.garcia@example.com")
	require.NoError(t, err)
	assert.Equal(t, "John Garcia", m.Name)

	_, err = store.FindByID(ctx, 99)
	assert.ErrorIs(t, err, appointment.ErrMemberNotFound)

	_, err = store.FindByEmail(ctx, "x@example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, appointment.ErrMemberNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
