package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/middleware"
	cartsvc "github.com/padistore/padistore-backend/internal/cart"
)

type stubCartService struct {
	cart    *cartsvc.Cart
	err     error
	lastAdd cartsvc.AddItemInput
}

func (s *stubCartService) Get(ctx context.Context, customerID uuid.UUID) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, customerID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.Cart, error) {
	s.lastAdd = input
	return s.cart, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID, qty int) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveAllForProduct(ctx context.Context, customerID uuid.UUID, productID uuid.UUID) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	return s.err
}

func authenticatedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithCustomerID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func TestCartAddItemSuccess(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.Cart{
		Items: []cartsvc.LineItem{{
			ProductID: productID,
			Name:      "Jollof Rice Spice Mix",
			UnitPrice: decimal.RequireFromString("2500"),
			Qty:       2,
		}},
		UpdatedAt: time.Now(),
	}}

	handler := CartAddItem(svc, nil)
	body := []byte(`{"product_id":"` + productID.String() + `","qty":2}`)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, authenticatedRequest(http.MethodPost, "/api/v1/cart/items", body))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastAdd.ProductID != productID || svc.lastAdd.Qty != 2 {
		t.Fatalf("unexpected add input %+v", svc.lastAdd)
	}

	var envelope struct {
		Data struct {
			TotalQty int    `json:"total_qty"`
			Subtotal string `json:"subtotal"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalQty != 2 {
		t.Fatalf("expected total qty 2 got %d", envelope.Data.TotalQty)
	}
	if envelope.Data.Subtotal != "5000" {
		t.Fatalf("expected subtotal 5000 got %s", envelope.Data.Subtotal)
	}
}

func TestCartAddItemRejectsInvalidQty(t *testing.T) {
	handler := CartAddItem(&stubCartService{cart: &cartsvc.Cart{}}, nil)
	body := []byte(`{"product_id":"` + uuid.NewString() + `","qty":0}`)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, authenticatedRequest(http.MethodPost, "/api/v1/cart/items", body))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartFetchRequiresCustomerContext(t *testing.T) {
	handler := CartFetch(&stubCartService{cart: &cartsvc.Cart{}}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
