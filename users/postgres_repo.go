package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/docuflow/go-auth-service/internal/dbx"
)

const uniqueViolation = "23505"

// PostgresRepo implements Repo over a Postgres database.
type PostgresRepo struct {
	db dbx.DBTX
}

func NewPostgresRepo(db dbx.DBTX) *PostgresRepo {
	return &PostgresRepo{db: db}
}

var _ Repo = (*PostgresRepo)(nil)

const userColumns = `
	id, email, password_hash, first_name, last_name, role, active,
	email_confirmed, refresh_token, refresh_token_expires_at, failed_logins,
	locked_out_until, password_reset_token, password_reset_expires_at,
	email_confirm_token, email_confirm_expires_at, created_at, updated_at,
	last_login_at`

func (r *PostgresRepo) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, role, active,
			email_confirmed, refresh_token, refresh_token_expires_at,
			failed_logins, locked_out_until, password_reset_token,
			password_reset_expires_at, email_confirm_token,
			email_confirm_expires_at, created_at, updated_at, last_login_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, NormalizeEmail(user.Email), user.PasswordHash, user.FirstName,
		user.LastName, user.Role, user.Active, user.EmailConfirmed,
		user.RefreshToken, user.RefreshTokenExpiresAt, user.FailedLogins,
		user.LockedOutUntil, user.PasswordResetToken,
		user.PasswordResetTokenExpiresAt, user.EmailConfirmToken,
		user.EmailConfirmTokenExpiresAt, user.CreatedAt, user.UpdatedAt,
		user.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users SET
			email = $2, password_hash = $3, first_name = $4, last_name = $5,
			role = $6, active = $7, email_confirmed = $8, refresh_token = $9,
			refresh_token_expires_at = $10, failed_logins = $11,
			locked_out_until = $12, password_reset_token = $13,
			password_reset_expires_at = $14, email_confirm_token = $15,
			email_confirm_expires_at = $16, updated_at = $17, last_login_at = $18
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, NormalizeEmail(user.Email), user.PasswordHash, user.FirstName,
		user.LastName, user.Role, user.Active, user.EmailConfirmed,
		user.RefreshToken, user.RefreshTokenExpiresAt, user.FailedLogins,
		user.LockedOutUntil, user.PasswordResetToken,
		user.PasswordResetTokenExpiresAt, user.EmailConfirmToken,
		user.EmailConfirmTokenExpiresAt, user.UpdatedAt, user.LastLoginAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepo) RotateRefreshToken(ctx context.Context, userID, previous, next string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $3, refresh_token_expires_at = $4, updated_at = now()
		WHERE id = $1 AND refresh_token = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, previous, next, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if affected == 0 {
		return ErrRefreshTokenConflict
	}
	return nil
}

func (r *PostgresRepo) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName,
		&user.LastName, &user.Role, &user.Active, &user.EmailConfirmed,
		&user.RefreshToken, &user.RefreshTokenExpiresAt, &user.FailedLogins,
		&user.LockedOutUntil, &user.PasswordResetToken,
		&user.PasswordResetTokenExpiresAt, &user.EmailConfirmToken,
		&user.EmailConfirmTokenExpiresAt, &user.CreatedAt, &user.UpdatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
