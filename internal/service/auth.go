package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kodbank/internal/domain"
	"kodbank/internal/utils"

	"github.com/sirupsen/logrus"
)

// AccountStore is the part of the credential store the auth flow needs
type AccountStore interface {
	Create(ctx context.Context, acct *domain.Account) error
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// TokenStore records issued session tokens
type TokenStore interface {
	Create(ctx context.Context, t *domain.SessionToken) error
}

// RegisterInput is the registration request after binding
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

// Validate rejects blank required fields before anything touches the store
func (in RegisterInput) Validate() error {
	if isBlank(in.Username) || isBlank(in.Email) || isBlank(in.Password) {
		return domain.NewValidationError("Username, email, and password are required")
	}
	return nil
}

// LoginInput is the login request after binding
type LoginInput struct {
	Username string
	Password string
}

func (in LoginInput) Validate() error {
	if isBlank(in.Username) || isBlank(in.Password) {
		return domain.NewValidationError("Username and password are required")
	}
	return nil
}

// Session is the outcome of a successful login
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// AuthService implements registration, login and token-backed identity
type AuthService struct {
	accounts AccountStore
	tokens   TokenStore
	issuer   *utils.TokenIssuer
	tokenTTL time.Duration
}

func NewAuthService(accounts AccountStore, tokens TokenStore, issuer *utils.TokenIssuer, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}
}

// Register creates a customer account with the default balance. It does not
// start a session.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acct := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Balance:      domain.DefaultBalance,
		Role:         domain.RoleCustomer,
	}
	if in.Phone != "" {
		phone := in.Phone
		acct.Phone = &phone
	}
	// Uniqueness is left to the store's index; no lookup first
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"account_id": acct.ID,
		"username":   acct.Username,
	}).Info("Account registered")
	return acct, nil
}

// Login checks the credentials, issues a session token and records it in the
// token store. An unknown username and a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	acct, err := s.accounts.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(acct.PasswordHash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	token, expiresAt, err := s.issuer.Issue(utils.Identity{
		Username:  acct.Username,
		AccountID: acct.ID,
		Role:      acct.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.tokens.Create(ctx, &domain.SessionToken{
		Token:     token,
		AccountID: acct.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"account_id": acct.ID,
		"expires_at": expiresAt.Format(time.RFC3339),
	}).Info("Session issued")
	return &Session{Token: token, ExpiresAt: expiresAt, Account: acct}, nil
}

// Authenticate verifies a session token
func (s *AuthService) Authenticate(token string) (*utils.Claims, error) {
	return s.issuer.Verify(token)
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
