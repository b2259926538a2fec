package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/internal/accounts"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
)

type stubAccountService struct {
	customer *models.Customer
	tokens   *accounts.TokenPair
	err      error

	lastRegister accounts.RegisterInput
	lastLogin    accounts.LoginInput
}

func (s *stubAccountService) Register(ctx context.Context, input accounts.RegisterInput) (*models.Customer, *accounts.TokenPair, error) {
	s.lastRegister = input
	return s.customer, s.tokens, s.err
}

func (s *stubAccountService) Login(ctx context.Context, input accounts.LoginInput) (*models.Customer, *accounts.TokenPair, error) {
	s.lastLogin = input
	return s.customer, s.tokens, s.err
}

func (s *stubAccountService) Refresh(ctx context.Context, accessToken, refreshToken string) (*accounts.TokenPair, error) {
	return s.tokens, s.err
}

func (s *stubAccountService) Logout(ctx context.Context, accessToken string) error {
	return s.err
}

func (s *stubAccountService) Profile(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	return s.customer, s.err
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, customerID uuid.UUID, input accounts.UpdateProfileInput) (*models.Customer, error) {
	return s.customer, s.err
}

func testCustomer() *models.Customer {
	return &models.Customer{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
		IsActive:  true,
	}
}

func TestAuthRegisterSuccess(t *testing.T) {
	svc := &stubAccountService{
		customer: testCustomer(),
		tokens:   &accounts.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
	}
	handler := AuthRegister(svc, nil)

	body := []byte(`{"first_name":"Ada","last_name":"Obi","email":"ada@example.com","password":"Secret#123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastRegister.Email != "ada@example.com" {
		t.Fatalf("unexpected register input %+v", svc.lastRegister)
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			Customer     struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected access token in payload got %q", envelope.Data.AccessToken)
	}
	if envelope.Data.Customer.Email != "ada@example.com" {
		t.Fatalf("expected customer in payload got %+v", envelope.Data.Customer)
	}
}

func TestAuthRegisterInvalidPayload(t *testing.T) {
	handler := AuthRegister(&stubAccountService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{"password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginForwardsClientIP(t *testing.T) {
	svc := &stubAccountService{
		customer: testCustomer(),
		tokens:   &accounts.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
	}
	handler := AuthLogin(svc, nil)

	body := []byte(`{"email":"ada@example.com","password":"Secret#123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastLogin.ClientIP != "203.0.113.9" {
		t.Fatalf("expected forwarded ip got %q", svc.lastLogin.ClientIP)
	}
}

func TestAuthLoginMapsServiceError(t *testing.T) {
	svc := &stubAccountService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := AuthLogin(svc, nil)

	body := []byte(`{"email":"ada@example.com","password":"wrong-pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "invalid email or password" {
		t.Fatalf("unexpected error message %q", envelope.Error.Message)
	}
}
