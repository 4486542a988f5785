package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/docg1701/iam-dashboard/internal/auth/domain"
	"github.com/docg1701/iam-dashboard/internal/database"
	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the PostgreSQL database. Uses transaction
// support via database.GetTx(). Returns an error if database insertion fails.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User in the PostgreSQL database. Uses transaction
// support via database.GetTx(). Returns an error if database update fails.
func (p *PostgreSQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET email = $1,
				  password_hash = $2,
				  role = $3,
				  totp_secret = $4,
				  totp_enabled = $5,
				  is_active = $6,
				  updated_at = $7
			  WHERE id = $8`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}

	return nil
}

// Get retrieves a User by ID from the PostgreSQL database. Uses transaction
// support via database.GetTx(). Returns ErrUserNotFound if the user doesn't
// exist, or an error if database query fails.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at
			  FROM users WHERE id = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, userID))
}

// GetByEmail retrieves a User by email from the PostgreSQL database. Uses
// transaction support via database.GetTx(). Returns ErrUserNotFound if the
// user doesn't exist, or an error if database query fails.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at
			  FROM users WHERE email = $1`

	return scanPostgreSQLUser(querier.QueryRowContext(ctx, query, email))
}

func scanPostgreSQLUser(row *sql.Row) (*authDomain.User, error) {
	var user authDomain.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.TOTPSecret,
		&user.TOTPEnabled,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	return &user, nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
