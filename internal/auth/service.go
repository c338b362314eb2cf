package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// DashboardPath is where a member lands after logging in.
const DashboardPath = "/pages/member/dashboard.html"

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	MemberID  int64     `json:"memberId"`
	Name      string    `json:"name"`
	Redirect  string    `json:"redirect"`
}

type Service struct {
	members MemberStore
	tokens  *TokenIssuer
	logger  *logging.Logger
}

func NewService(members MemberStore, tokens *TokenIssuer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{members: members, tokens: tokens, logger: logger.With("component", "auth")}
}

// Login validates the form, checks the password and issues a token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email, err := ValidateLogin(email, password)
	if err != nil {
		return nil, err
	}

	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appointment.ErrMemberNotFound) {
			s.logger.Info("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find member: %w", err)
	}

	if err := VerifyPassword(member.PasswordHash, password); err != nil {
		s.logger.Info("login with wrong password", "member_id", member.ID)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(member.ID, member.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("member logged in", "member_id", member.ID)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expires,
		MemberID:  member.ID,
		Name:      member.Name,
		Redirect:  DashboardPath,
	}, nil
}

// Authenticate turns a bearer token into a session.
func (s *Service) Authenticate(raw string) (Session, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Session{}, err
	}
	return Session{Claims: claims}, nil
}

func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}

// Session is the signed-in state derived from a token. The zero value is an
// anonymous visitor.
type Session struct {
	Claims *Claims
}

func (s Session) IsAuthenticated() bool {
	return s.Claims != nil && s.Claims.MemberID != 0
}

func (s Session) MemberID() int64 {
	if s.Claims == nil {
		return 0
	}
	return s.Claims.MemberID
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by the auth middleware,
// or an anonymous one.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

// DemoMembers is the member directory of the in-memory data source.
func DemoMembers(passwordHash string) []appointment.Member {
	return []appointment.Member{
		{ID: 20, Name: "John Garcia", Email: "john.garcia@example.com", PasswordHash: passwordHash},
		{ID: 21, Name: "Maria Lopez", Email: "maria.lopez@example.com", PasswordHash: passwordHash},
	}
}
