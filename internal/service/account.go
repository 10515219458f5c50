package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"lotto-service/internal/model"
	"lotto-service/internal/repository"
)

// Account errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrSessionInvalid     = errors.New("invalid or expired session")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// RegisterInput carries the optional profile fields of a registration.
type RegisterInput struct {
	Username       string
	Password       string
	FullName       *string
	Phone          *string
	Address        *string
	InitialBalance int64
}

// AccountService handles registration, login and session resolution.
// The transactional core always receives an already-resolved account
// id; this service is where opaque session tokens become that id.
type AccountService struct {
	pool       *pgxpool.Pool
	users      *repository.UserRepository
	wallet     *repository.WalletRepository
	sessionTTL time.Duration
	bcryptCost int
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	pool *pgxpool.Pool,
	users *repository.UserRepository,
	wallet *repository.WalletRepository,
	sessionTTL time.Duration,
	bcryptCost int,
) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		pool:       pool,
		users:      users,
		wallet:     wallet,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a MEMBER account. A positive initial balance is
// recorded as the account's first ledger entry in the same transaction.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	taken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	users := s.users.WithTx(tx)
	wallet := s.wallet.WithTx(tx)

	user, err := users.Create(ctx, in.Username, string(hash), in.FullName, in.Phone, in.Address, model.RoleMember)
	if err != nil {
		return nil, err
	}

	if in.InitialBalance > 0 {
		_, err = wallet.Append(ctx, user.ID, model.TxnInitial, in.InitialBalance,
			repository.EntryLinks{}, "Initial balance on register")
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit registration transaction: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("Account registered")
	return user, nil
}

// Login verifies a credential and issues a session token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, "", err
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.users.CreateSession(ctx, token, user.ID, expiresAt); err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Authenticate resolves a session token to its account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.GetBySession(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// Logout revokes a session token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.users.DeleteSession(ctx, token)
}

// newSessionToken returns 32 bytes of hex-encoded randomness.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
