package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/go-auth-service/internal/dbx"
)

// PostgresRepo implements Store over a Postgres database.
type PostgresRepo struct {
	db      dbx.DBTX
	nowFunc func() time.Time
}

func NewPostgresRepo(db dbx.DBTX) *PostgresRepo {
	return &PostgresRepo{db: db, nowFunc: time.Now}
}

var _ Store = (*PostgresRepo)(nil)

func (r *PostgresRepo) Create(ctx context.Context, userID, ipAddress, userAgent string) (*Session, error) {
	now := r.nowFunc()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(DefaultLifetime),
		Active:    true,
		CreatedAt: now,
	}

	query := `
		INSERT INTO user_sessions (id, user_id, ip_address, user_agent, expires_at, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.IPAddress, session.UserAgent,
		session.ExpiresAt, session.Active, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, expires_at, active, created_at
		FROM user_sessions
		WHERE id = $1 AND active
	`
	var session Session
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent,
		&session.ExpiresAt, &session.Active, &session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepo) Update(ctx context.Context, session *Session) error {
	query := `
		UPDATE user_sessions
		SET ip_address = $2, user_agent = $3, expires_at = $4, active = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.IPAddress, session.UserAgent, session.ExpiresAt, session.Active,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, sessionID string) error {
	query := `UPDATE user_sessions SET active = false WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE user_sessions SET active = false WHERE user_id = $1 AND active`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("deactivate user sessions: %w", err)
	}
	return nil
}

func (r *PostgresRepo) SweepExpired(ctx context.Context) (int64, error) {
	query := `UPDATE user_sessions SET active = false WHERE active AND expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, r.nowFunc())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return count, nil
}
