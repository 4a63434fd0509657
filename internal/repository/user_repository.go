package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/birthdaysrun/reminder/internal/model"
)

// UserRepository reads users from the identity store
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves the first user row matching id.
// It returns ErrNotFound when no row matches.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	// "user" is reserved in Postgres and must stay quoted.
	query := `
		SELECT id, username, COALESCE(email, '')
		FROM "user"
		WHERE id = $1
		LIMIT 1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// scanUser scans a single user row
func (r *UserRepository) scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
