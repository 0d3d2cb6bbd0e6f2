package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medishift_backend/internal/models"
)

// AuthRepository defines the interface for user account database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	FindUserByUsername(username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(userID int64) (*models.User, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser inserts a new user account. It expects an SQLExecutor which can
// be a *sql.DB or *sql.Tx; staff creation runs it inside the staff transaction.
func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, first_name, last_name, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()

	var userID int64
	err := executor.QueryRow(query,
		user.Username, hashedPassword, user.Email, user.FirstName, user.LastName,
		true, currentTime, currentTime,
	).Scan(&userID)

	if err != nil {
		if IsUniqueViolation(err, "users_username_key") {
			return 0, fmt.Errorf("%w: username %q already taken", ErrDuplicateKey, user.Username)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return userID, nil
}

// UpdateUser updates the mutable profile fields of a user account.
func (r *authRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET email = $1, first_name = $2, last_name = $3, updated_at = $4
	          WHERE id = $5`

	result, err := executor.Exec(query, user.Email, user.FirstName, user.LastName, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("%w: updating user ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUserRow(row scanner, user *models.User, hashedPassword *string) error {
	return row.Scan(
		&user.ID, &user.Username, hashedPassword, &user.Email, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
}

// FindUserByUsername retrieves a user by username together with the stored
// password hash for credential verification.
func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	query := `SELECT id, username, password_hash, email, first_name, last_name, is_active, created_at, updated_at
	          FROM users WHERE username = $1`

	err := scanUserRow(r.db.QueryRow(query, username), user, &hashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, hashedPassword, nil
}

// FindUserByID retrieves a user by primary key.
func (r *authRepository) FindUserByID(userID int64) (*models.User, error) {
	user := &models.User{}
	var hashedPassword string
	query := `SELECT id, username, password_hash, email, first_name, last_name, is_active, created_at, updated_at
	          FROM users WHERE id = $1`

	err := scanUserRow(r.db.QueryRow(query, userID), user, &hashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}
