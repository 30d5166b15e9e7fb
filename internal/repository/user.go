package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bienesraices/boutique/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateGmail    = errors.New("gmail already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByGmail(gmail string) (*model.User, error)
	ByIdentifier(identifier string) (*model.User, error)
	ByProviderIdentity(provider, providerUserID string) (*model.User, error)
	Update(user *model.User) error
	UpdateLockout(user *model.User) error
	Delete(id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, provider, provider_user_id, gmail, username, password_hash,
	                             name, picture, email_confirmed_at, failed_attempts, locked_until,
	                             permanently_locked_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Provider,
		user.ProviderUserID,
		user.Gmail,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Picture,
		user.EmailConfirmedAt,
		user.FailedAttempts,
		user.LockedUntil,
		user.PermanentlyLockedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// Works for both SQLite and PostgreSQL error strings
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			if strings.Contains(errStr, "username") {
				return ErrDuplicateUsername
			}
			return ErrDuplicateGmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByGmail(gmail string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE gmail = $1`

	err := r.db.Get(user, query, gmail)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

// ByIdentifier resolves the login form's single field, which accepts
// either the gmail address or the username.
func (r *userRepository) ByIdentifier(identifier string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE gmail = $1 OR username = $1`

	err := r.db.Get(user, query, identifier)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByProviderIdentity(provider, providerUserID string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE provider = $1 AND provider_user_id = $2`

	err := r.db.Get(user, query, provider, providerUserID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users
	          SET provider = $1, provider_user_id = $2, gmail = $3, username = $4,
	              password_hash = $5, name = $6, picture = $7, email_confirmed_at = $8,
	              failed_attempts = $9, locked_until = $10, permanently_locked_at = $11,
	              updated_at = $12
	          WHERE id = $13`

	_, err := r.db.Exec(query,
		user.Provider,
		user.ProviderUserID,
		user.Gmail,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Picture,
		user.EmailConfirmedAt,
		user.FailedAttempts,
		user.LockedUntil,
		user.PermanentlyLockedAt,
		time.Now(),
		user.ID,
	)
	return err
}

// UpdateLockout persists only the attempt counters so a failed login
// never clobbers concurrent profile edits.
func (r *userRepository) UpdateLockout(user *model.User) error {
	query := `UPDATE users
	          SET failed_attempts = $1, locked_until = $2, permanently_locked_at = $3, updated_at = $4
	          WHERE id = $5`

	_, err := r.db.Exec(query,
		user.FailedAttempts,
		user.LockedUntil,
		user.PermanentlyLockedAt,
		time.Now(),
		user.ID,
	)
	return err
}

func (r *userRepository) Delete(id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
