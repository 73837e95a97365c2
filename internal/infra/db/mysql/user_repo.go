package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/clausewise/clausewise/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save insert/update user record
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, email, full_name, password_hash, is_active, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 full_name=VALUES(full_name), password_hash=VALUES(password_hash), is_active=VALUES(is_active);
`
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		u.ID, strings.ToLower(u.Email), u.FullName, u.PasswordHash, u.IsActive, createdAt,
	)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, email, full_name, password_hash, is_active, created_at
FROM users WHERE email=? LIMIT 1;
`
	return scanUser(r.db.QueryRowContext(ctx, q, strings.ToLower(email)))
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	const q = `
SELECT id, email, full_name, password_hash, is_active, created_at
FROM users WHERE id=? LIMIT 1;
`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
