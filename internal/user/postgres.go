package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ksrami99/video-tube/internal/db"
)

const userColumns = `id, fullname, username, email, avatar_url, cover_image_url,
       password_hash, refresh_token, created_at, updated_at`

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (fullname, username, email, avatar_url, cover_image_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		u.FullName,
		u.Username,
		u.Email,
		u.AvatarURL,
		u.CoverImageURL,
		u.PasswordHash,
	).Scan(&u.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *PostgresRepository) FindByIdentifier(ctx context.Context, username, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1 <> '' AND username = $1)
		   OR ($2 <> '' AND LOWER(email) = LOWER($2))
	`, username, email))
}

func (r *PostgresRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE username = $1 OR LOWER(email) = LOWER($2)
		)
	`, username, email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = $2, updated_at = NOW()
		WHERE id = $1
	`, id, token)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.UpdateRefreshToken(ctx, id, "")
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.AvatarURL,
		&u.CoverImageURL,
		&u.PasswordHash,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// 23505 is unique_violation; the unique indexes on username and
// LOWER(email) are the authoritative duplicate check.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
