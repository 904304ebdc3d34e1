// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing, verifying and
// refreshing the stateless bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// TokenAuthority issues and verifies bearer tokens. *auth.Authority is the
// production implementation.
type TokenAuthority interface {
	Issue(account *models.Account) (string, error)
	Verify(token string) (*auth.UserClaims, error)
}

// UserService provides authentication-related operations:
// - Register: validate, create the account and mint a token
// - Login: verify credentials and mint a token
// - VerifyToken: check a presented token
// - RefreshToken: mint a new token from the current account state
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenAuthority
	hasher      PasswordHasher
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService wires the service. db may be nil for the in-memory manager.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenAuthority, hasher PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		logger:      logger.With("module", "user_service"),
	}
}

func (s *UserService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

// Register creates an account for a fresh email and username and returns a
// token for it.
func (s *UserService) Register(ctx context.Context, in validation.RegisterInput) (string, error) {
	if err := validation.ValidateRegistration(in); err != nil {
		return "", err
	}

	repo := s.users()

	_, err := repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", common.ErrConflict
	case !errors.Is(err, common.ErrNotFound):
		return "", s.storeError(ctx, "find by email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return "", common.ErrInternal
	}

	// the pre-check above can race; the store's unique constraint decides
	account, err := repo.Create(ctx, &models.Account{
		Email:        in.Email,
		Username:     in.Name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return "", common.ErrConflict
		}
		return "", s.storeError(ctx, "create account", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", account.ID)

	return s.issue(ctx, account)
}

// Login returns a token for valid credentials. Unknown email and wrong
// password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, in validation.LoginInput) (string, error) {
	if err := validation.ValidateLogin(in); err != nil {
		return "", err
	}

	account, err := s.users().FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// same bcrypt work as a real comparison
			_ = s.hasher.Compare(s.getDummyHash(), in.Password)
			return "", common.ErrInvalidCredentials
		}
		return "", s.storeError(ctx, "find by email", err)
	}

	if err := s.hasher.Compare(account.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Error(ctx, "password comparison failed", "user_id", account.ID, "error", err)
		}
		return "", common.ErrInvalidCredentials
	}

	return s.issue(ctx, account)
}

// VerifyToken returns the claims of a valid token. The two token failures
// stay distinct: common.ErrTokenExpired and common.ErrTokenSignatureInvalid.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*auth.UserClaims, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, err
	}
	return claims, nil
}

// RefreshToken verifies the old token, reloads the account it names and
// issues a new token from the stored state. The old token stays usable
// until it expires.
func (s *UserService) RefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.VerifyToken(ctx, token)
	if err != nil {
		return "", err
	}

	account, err := s.users().FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrAccountNotFound
		}
		return "", s.storeError(ctx, "find by id", err)
	}

	return s.issue(ctx, account)
}

// GetUser looks up an account by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, s.storeError(ctx, "find by id", err)
	}
	return account, nil
}

// --- helpers below ---

func (s *UserService) issue(ctx context.Context, account *models.Account) (string, error) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "user_id", account.ID, "error", err)
		return "", common.ErrInternal
	}
	return token, nil
}

func (s *UserService) storeError(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "account store failure", "op", op, "error", err)
	return common.ErrStore
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			pw = "dummy-password"
		}
		s.dummyHash, _ = s.hasher.Hash(pw)
	})
	return s.dummyHash
}
