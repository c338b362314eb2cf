package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
)

// MemberStore looks members up for login.
type MemberStore interface {
	FindByEmail(ctx context.Context, email string) (*appointment.Member, error)
	FindByID(ctx context.Context, id int64) (*appointment.Member, error)
}

type MemoryMemberStore struct {
	mu      sync.RWMutex
	byEmail map[string]appointment.Member
}

func NewMemoryMemberStore(members ...appointment.Member) *MemoryMemberStore {
	s := &MemoryMemberStore{byEmail: make(map[string]appointment.Member, len(members))}
	for _, m := range members {
		s.byEmail[strings.ToLower(m.Email)] = m
	}
	return s
}

func (s *MemoryMemberStore) FindByEmail(_ context.Context, email string) (*appointment.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, appointment.ErrMemberNotFound
	}
	return &m, nil
}

func (s *MemoryMemberStore) FindByID(_ context.Context, id int64) (*appointment.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.byEmail {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, appointment.ErrMemberNotFound
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgMemberStore struct {
	pool querier
}

func NewPgMemberStore(pool querier) *PgMemberStore {
	return &PgMemberStore{pool: pool}
}

func (s *PgMemberStore) FindByEmail(ctx context.Context, email string) (*appointment.Member, error) {
	return s.scan(s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash
		FROM members
		WHERE lower(email) = lower($1)
	`, email))
}

func (s *PgMemberStore) FindByID(ctx context.Context, id int64) (*appointment.Member, error) {
	return s.scan(s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash
		FROM members
		WHERE id = $1
	`, id))
}

func (s *PgMemberStore) scan(row pgx.Row) (*appointment.Member, error) {
	var m appointment.Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appointment.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}
