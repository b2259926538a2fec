package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/auth"
	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

type stubRepo struct {
	byEmail map[string]*models.Customer
	byID    map[uuid.UUID]*models.Customer
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byEmail: map[string]*models.Customer{},
		byID:    map[uuid.UUID]*models.Customer{},
	}
}

func (s *stubRepo) Create(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	if _, ok := s.byEmail[customer.Email]; ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, `duplicate key value violates unique constraint "idx_customers_email"`)
	}
	customer.ID = uuid.New()
	s.byEmail[customer.Email] = customer
	s.byID[customer.ID] = customer
	return customer, nil
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	customer, ok := s.byEmail[email]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return customer, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return customer, nil
}

func (s *stubRepo) UpdateProfile(_ context.Context, customer *models.Customer) error {
	s.byID[customer.ID] = customer
	return nil
}

func (s *stubRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if customer, ok := s.byID[id]; ok {
		customer.LastLoginAt = &at
	}
	return nil
}

type stubSessions struct {
	generated map[string]string
	revoked   []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(s.generated, oldAccessID)
	newAccessID := uuid.NewString()
	token := "refresh-" + newAccessID
	s.generated[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

type stubLimiter struct {
	counts map[string]int64
	limits map[string]int64
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func testJWT() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "padistore-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testLimits() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		LoginWindow:        time.Minute,
		LoginEmailLimit:    3,
		LoginIPLimit:       10,
		RegisterWindow:     time.Minute,
		RegisterEmailLimit: 3,
		RegisterIPLimit:    2,
	}
}

func fixture(t *testing.T) (Service, *stubRepo, *stubSessions, *stubLimiter) {
	t.Helper()
	repo := newStubRepo()
	sessions := newStubSessions()
	limiter := &stubLimiter{counts: map[string]int64{}}
	svc, err := NewService(
		repo, sessions, limiter, logger.New(logger.Options{ServiceName: "test"}),
		testJWT(), config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}, testLimits(),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions, limiter
}

func register(t *testing.T, svc Service) (*models.Customer, *TokenPair) {
	t.Helper()
	customer, pair, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Amaka",
		LastName:  "Obi",
		Email:     "Amaka@Example.com",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return customer, pair
}

func TestRegister(t *testing.T) {
	svc, _, _, _ := fixture(t)

	customer, pair := register(t, svc)
	if customer.Email != "amaka@example.com" {
		t.Fatalf("email should be normalized, got %q", customer.Email)
	}
	if customer.PasswordHash == "correct-horse" || customer.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected token pair on registration")
	}

	claims, err := auth.ParseAccessToken(testJWT(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.CustomerID != customer.ID {
		t.Fatal("access token bound to wrong customer")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := fixture(t)
	register(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "amaka@example.com",
		Password:  "another-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := fixture(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{FirstName: "", LastName: "Obi", Email: "a@b.co", Password: "longenough"},
		{FirstName: "Amaka", LastName: "Obi", Email: "not-an-email", Password: "longenough"},
		{FirstName: "Amaka", LastName: "Obi", Email: "a@b.co", Password: "short"},
	}
	for _, input := range cases {
		if _, _, err := svc.Register(ctx, input); err == nil {
			t.Fatalf("expected validation error for %+v", input)
		}
	}
}

func TestRegister_RateLimitedByIP(t *testing.T) {
	svc, _, _, limiter := fixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := svc.Register(ctx, RegisterInput{
			FirstName: "Amaka",
			LastName:  "Obi",
			Email:     uuid.NewString() + "@example.com",
			Password:  "correct-horse",
			ClientIP:  "105.112.0.9",
		})
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	_, _, err := svc.Register(ctx, RegisterInput{
		FirstName: "Amaka",
		LastName:  "Obi",
		Email:     uuid.NewString() + "@example.com",
		Password:  "correct-horse",
		ClientIP:  "105.112.0.9",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if limiter.counts["register:ip:105.112.0.9"] != 3 {
		t.Fatalf("per-ip scope should count every attempt, got %d", limiter.counts["register:ip:105.112.0.9"])
	}

	// A different address is unaffected.
	if _, _, err := svc.Register(ctx, RegisterInput{
		FirstName: "Amaka",
		LastName:  "Obi",
		Email:     uuid.NewString() + "@example.com",
		Password:  "correct-horse",
		ClientIP:  "41.58.20.4",
	}); err != nil {
		t.Fatalf("register from fresh ip: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, repo, _, _ := fixture(t)
	customer, _ := register(t, svc)

	got, pair, err := svc.Login(context.Background(), LoginInput{
		Email:    "amaka@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != customer.ID || pair.AccessToken == "" {
		t.Fatal("login returned wrong customer or empty tokens")
	}
	if repo.byID[customer.ID].LastLoginAt == nil {
		t.Fatal("last login should be recorded")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _, _ := fixture(t)
	register(t, svc)

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "amaka@example.com",
		Password: "wrong-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	svc, _, _, _ := fixture(t)
	register(t, svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Login(ctx, LoginInput{Email: "amaka@example.com", Password: "wrong-pass"})
	}
	_, _, err := svc.Login(ctx, LoginInput{Email: "amaka@example.com", Password: "correct-horse"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, _, sessions, _ := fixture(t)
	_, pair := register(t, svc)
	ctx := context.Background()

	fresh, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token should rotate")
	}

	// The old pair is dead after rotation.
	if _, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken); err == nil {
		t.Fatal("expected rejection of replayed refresh token")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.generated))
	}
}

func TestLogout(t *testing.T) {
	svc, _, sessions, _ := fixture(t)
	_, pair := register(t, svc)

	if err := svc.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatal("session should be revoked on logout")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _, _ := fixture(t)
	customer, _ := register(t, svc)
	phone := "08031234567"

	updated, err := svc.UpdateProfile(context.Background(), customer.ID, UpdateProfileInput{
		FirstName: "Chiamaka",
		LastName:  "Obi",
		Phone:     &phone,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Chiamaka" || updated.Phone == nil {
		t.Fatalf("profile not updated: %+v", updated)
	}

	if _, err := svc.UpdateProfile(context.Background(), customer.ID, UpdateProfileInput{FirstName: " "}); err == nil {
		t.Fatal("expected validation error for blank name")
	}
}
