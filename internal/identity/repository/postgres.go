package repository

import (
	"context"
	"database/sql"
	"errors"

	"promanage/backend/internal/db"
	"promanage/backend/internal/identity/domain"
)

// PostgresRepository stores users in the users table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, refresh_token_hash, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create inserts u. A duplicate email yields ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, refresh_token_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.RefreshTokenHash), u.CreatedAt, u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// SetRefreshTokenHash overwrites the stored fingerprint.
func (r *PostgresRepository) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	return err
}

// ClearRefreshTokenHash sets the stored fingerprint to NULL.
func (r *PostgresRepository) ClearRefreshTokenHash(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = NULL, updated_at = now() WHERE id = $1`, id)
	return err
}

// ClearRefreshTokenHashIf clears the fingerprint in a single conditional update.
func (r *PostgresRepository) ClearRefreshTokenHashIf(ctx context.Context, id, expected string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = NULL, updated_at = now()
		 WHERE id = $1 AND refresh_token_hash = $2`, id, expected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u       domain.User
		role    string
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	u.RefreshTokenHash = refresh.String
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
