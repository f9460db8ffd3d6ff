package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

const userColumns = `id, name, email, username, password_hash, role, created_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns a user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListIDsByRole returns the ids of users holding the role.
func (r *UserRepository) ListIDsByRole(ctx context.Context, role models.UserRole) ([]int64, error) {
	const query = `SELECT id FROM users WHERE role = $1 ORDER BY id`
	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query, role); err != nil {
		return nil, fmt.Errorf("list user ids by role: %w", err)
	}
	return ids, nil
}

// Create inserts a new user and fills the generated columns.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, username, password_hash, role) VALUES ($1, $2, $3, $4, $5) RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, user, query, user.Name, user.Email, user.Username, user.PasswordHash, user.Role); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update overwrites profile fields. An empty password hash keeps the stored one.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $2, email = $3, username = $4, role = $5, password_hash = COALESCE(NULLIF($6, ''), password_hash)
WHERE id = $1 RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, user, query, user.ID, user.Name, user.Email, user.Username, user.Role, user.PasswordHash); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Delete removes a user permanently.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "users", id)
}

// deleteByID runs a hard delete and reports sql.ErrNoRows when nothing matched.
func deleteByID(ctx context.Context, db *sqlx.DB, table string, id int64) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted %s rows: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
