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

// MySQLUserRepository implements User persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the MySQL database using BINARY(16) for UUIDs.
// Uses transaction support via database.GetTx(). Returns an error if UUID
// marshaling or database insertion fails.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Update modifies an existing User in the MySQL database using BINARY(16) for
// UUIDs. Uses transaction support via database.GetTx(). Returns an error if
// UUID marshaling or database update fails.
func (m *MySQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE users
			  SET email = ?,
				  password_hash = ?,
				  role = ?,
				  totp_secret = ?,
				  totp_enabled = ?,
				  is_active = ?,
				  updated_at = ?
			  WHERE id = ?`

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.TOTPSecret,
		user.TOTPEnabled,
		user.IsActive,
		user.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}

	return nil
}

// Get retrieves a User by ID from the MySQL database using BINARY(16) for
// UUIDs. Uses transaction support via database.GetTx(). Returns
// ErrUserNotFound if the user doesn't exist, or an error if UUID unmarshaling
// or database query fails.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at
			  FROM users WHERE id = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	return scanMySQLUser(querier.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a User by email from the MySQL database. Uses
// transaction support via database.GetTx(). Returns ErrUserNotFound if the
// user doesn't exist, or an error if UUID unmarshaling or database query fails.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, password_hash, role, totp_secret, totp_enabled, is_active, created_at, updated_at
			  FROM users WHERE email = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, email))
}

func scanMySQLUser(row *sql.Row) (*authDomain.User, error) {
	var user authDomain.User
	var idBytes []byte

	err := row.Scan(
		&idBytes,
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

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &user, nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
