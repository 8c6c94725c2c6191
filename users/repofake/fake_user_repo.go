package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/docuflow/go-auth-service/users"
)

// FakeUserRepo is an in-memory implementation of users.Repo for tests and
// for running the server without a database.
type FakeUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*users.User
	byEmail map[string]string // normalized email -> user ID
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byID:    make(map[string]*users.User),
		byEmail: make(map[string]string),
	}
}

var _ users.Repo = (*FakeUserRepo)(nil)

func (r *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := users.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return users.ErrDuplicateEmail
	}

	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[email] = user.ID
	return nil
}

func (r *FakeUserRepo) Update(_ context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[users.NormalizeEmail(user.Email)] = user.ID
	return nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[users.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *FakeUserRepo) RotateRefreshToken(_ context.Context, userID, previous, next string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return users.ErrRefreshTokenConflict
	}
	if user.RefreshToken == nil || *user.RefreshToken != previous {
		return users.ErrRefreshTokenConflict
	}

	token := next
	expiry := expiresAt
	user.RefreshToken = &token
	user.RefreshTokenExpiresAt = &expiry
	user.UpdatedAt = time.Now()
	return nil
}
