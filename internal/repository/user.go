package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-service/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrSessionNotFound = errors.New("session not found")
)

const userColumns = `id, username, password_hash, full_name, phone, address, user_type, is_active, created_at, updated_at`

// UserRepository handles account persistence.
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FullName,
		&u.Phone,
		&u.Address,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account with an already-hashed credential.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, fullName, phone, address *string, role string) (*model.User, error) {
	const query = `
		INSERT INTO app_user (username, password_hash, full_name, phone, address, user_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, username, passwordHash, fullName, phone, address, role))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves an account by id.
// Returns ErrUserNotFound if the account does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM app_user WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves an account by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM app_user WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UsernameExists checks whether a username is already registered.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM app_user WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// LockForLedger takes a row lock on the account. Ledger appends acquire
// this lock first so the read-balance-then-insert sequence for one
// account never interleaves with another writer.
func (r *UserRepository) LockForLedger(ctx context.Context, id int64) error {
	const query = `SELECT id FROM app_user WHERE id = $1 FOR UPDATE`

	var got int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user row: %w", err)
	}
	return nil
}

// CreateSession stores a login token for an account.
func (r *UserRepository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	const query = `
		INSERT INTO session_token (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetBySession resolves an unexpired login token to its account.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (r *UserRepository) GetBySession(ctx context.Context, token string) (*model.User, error) {
	const query = `
		SELECT u.id, u.username, u.password_hash, u.full_name, u.phone, u.address,
		       u.user_type, u.is_active, u.created_at, u.updated_at
		FROM app_user u
		JOIN session_token s ON s.user_id = u.id
		WHERE s.token = $1 AND s.expires_at > NOW()
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return user, nil
}

// DeleteSession removes a login token (logout).
func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	const query = `DELETE FROM session_token WHERE token = $1`

	if _, err := r.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
