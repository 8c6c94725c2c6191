package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/go-auth-service/sessions"
)

// FakeSessionRepo is an in-memory implementation of sessions.Store for tests
// and for running the server without a database.
type FakeSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*sessions.Session
	nowFunc  func() time.Time
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
		nowFunc:  time.Now,
	}
}

// SetNowFunc overrides the time source (primarily for testing)
func (r *FakeSessionRepo) SetNowFunc(now func() time.Time) {
	r.nowFunc = now
}

var _ sessions.Store = (*FakeSessionRepo)(nil)

func (r *FakeSessionRepo) Create(_ context.Context, userID, ipAddress, userAgent string) (*sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	session := &sessions.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(sessions.DefaultLifetime),
		Active:    true,
		CreatedAt: now,
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return session, nil
}

func (r *FakeSessionRepo) Get(_ context.Context, sessionID string) (*sessions.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok || !session.Active {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (r *FakeSessionRepo) Update(_ context.Context, session *sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[sessionID]; ok {
		session.Active = false
	}
	return nil
}

func (r *FakeSessionRepo) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Active = false
		}
	}
	return nil
}

func (r *FakeSessionRepo) SweepExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	var count int64
	for _, session := range r.sessions {
		if session.Active && session.Expired(now) {
			session.Active = false
			count++
		}
	}
	return count, nil
}
