package accounts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/auth"
	"github.com/padistore/padistore-backend/pkg/auth/session"
	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/db"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/security"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type customerRepo interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateProfile(ctx context.Context, customer *models.Customer) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// TokenPair is issued on registration, login, and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput creates a storefront account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     *string
	ClientIP  string
}

// LoginInput authenticates a storefront account.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     *string
}

// Service owns account registration, authentication, and profiles.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Customer, *TokenPair, error)
	Login(ctx context.Context, input LoginInput) (*models.Customer, *TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*models.Customer, error)
}

type service struct {
	repo      customerRepo
	sessions  sessionManager
	limiter   rateLimiter
	logger    *logger.Logger
	jwt       config.JWTConfig
	passwords config.PasswordConfig
	limits    config.AuthRateLimitConfig
	now       func() time.Time
}

// NewService builds the account service.
func NewService(
	repo customerRepo,
	sessions sessionManager,
	limiter rateLimiter,
	logg *logger.Logger,
	jwtCfg config.JWTConfig,
	passwordCfg config.PasswordConfig,
	limitCfg config.AuthRateLimitConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		sessions:  sessions,
		limiter:   limiter,
		logger:    logg,
		jwt:       jwtCfg,
		passwords: passwordCfg,
		limits:    limitCfg,
		now:       time.Now,
	}, nil
}

// Register creates the account and signs the customer in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Customer, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateRegistration(input, email); err != nil {
		return nil, nil, err
	}

	if err := s.allow(ctx, "register:email:"+email, int64(s.limits.RegisterEmailLimit), s.limits.RegisterWindow); err != nil {
		return nil, nil, err
	}
	if ip := strings.TrimSpace(input.ClientIP); ip != "" {
		if err := s.allow(ctx, "register:ip:"+ip, int64(s.limits.RegisterIPLimit), s.limits.RegisterWindow); err != nil {
			return nil, nil, err
		}
	}

	hash, err := security.HashPassword(input.Password, s.passwords)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	customer := &models.Customer{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "email") {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	pair, err := s.issueTokens(ctx, created)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info(s.logger.WithCustomerID(ctx, created.ID.String()), "account registered")
	return created, pair, nil
}

// Login verifies credentials under the login rate limits.
func (s *service) Login(ctx context.Context, input LoginInput) (*models.Customer, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allow(ctx, "login:email:"+email, int64(s.limits.LoginEmailLimit), s.limits.LoginWindow); err != nil {
		return nil, nil, err
	}
	if ip := strings.TrimSpace(input.ClientIP); ip != "" {
		if err := s.allow(ctx, "login:ip:"+ip, int64(s.limits.LoginIPLimit), s.limits.LoginWindow); err != nil {
			return nil, nil, err
		}
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, nil, invalidCredentials()
		}
		return nil, nil, err
	}
	if !customer.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "this account is disabled")
	}

	ok, err := security.VerifyPassword(input.Password, customer.PasswordHash)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, nil, invalidCredentials()
	}

	if err := s.repo.TouchLastLogin(ctx, customer.ID, s.now().UTC()); err != nil {
		s.logger.Warn(s.logger.WithCustomerID(ctx, customer.ID.String()), "last login timestamp was not recorded")
	}

	pair, err := s.issueTokens(ctx, customer)
	if err != nil {
		return nil, nil, err
	}
	return customer, pair, nil
}

// Refresh rotates the refresh token and issues a fresh pair. The expired
// access token identifies the session being rotated.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "refresh session")
	}

	access, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		CustomerID: claims.CustomerID,
		Email:      claims.Email,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

// Logout revokes the refresh session tied to the access token.
func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Profile loads the customer record.
func (s *service) Profile(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.repo.FindByID(ctx, customerID)
}

// UpdateProfile replaces the mutable profile fields.
func (s *service) UpdateProfile(ctx context.Context, customerID uuid.UUID, input UpdateProfileInput) (*models.Customer, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer.FirstName = strings.TrimSpace(input.FirstName)
	customer.LastName = strings.TrimSpace(input.LastName)
	customer.Phone = input.Phone

	if err := s.repo.UpdateProfile(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return customer, nil
}

func (s *service) issueTokens(ctx context.Context, customer *models.Customer) (*TokenPair, error) {
	accessID := session.NewAccessID()
	access, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		CustomerID: customer.ID,
		Email:      customer.Email,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refresh session")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int64, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		s.logger.Warn(ctx, "rate limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again shortly")
	}
	return nil
}

func validateRegistration(input RegisterInput, email string) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if !emailPattern.MatchString(email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email address is required")
	}
	if len(input.Password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "email or password is incorrect")
}
