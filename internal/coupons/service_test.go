package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

type stubRepo struct {
	coupons map[string]*models.Coupon
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	coupon, ok := s.coupons[code]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return coupon, nil
}

type stubStore struct {
	values map[string]string
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	raw, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return raw, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubStore) AppliedCouponKey(customerID string) string {
	return "ps:coupon:" + customerID
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func ptrTime(t time.Time) *time.Time { return &t }

func fixture(t *testing.T) (Service, *stubStore, *stubRepo) {
	t.Helper()
	minSubtotal := decimal.RequireFromString("20000")
	repo := &stubRepo{coupons: map[string]*models.Coupon{
		"SAVE10": {
			Code:     "SAVE10",
			Kind:     enums.CouponKindPercentage,
			Value:    decimal.RequireFromString("10"),
			IsActive: true,
		},
		"FLAT500": {
			Code:        "FLAT500",
			Kind:        enums.CouponKindFixed,
			Value:       decimal.RequireFromString("500"),
			MinSubtotal: &minSubtotal,
			IsActive:    true,
		},
		"RETIRED": {
			Code:     "RETIRED",
			Kind:     enums.CouponKindFixed,
			Value:    decimal.RequireFromString("100"),
			IsActive: false,
		},
		"EXPIRED": {
			Code:      "EXPIRED",
			Kind:      enums.CouponKindFixed,
			Value:     decimal.RequireFromString("100"),
			IsActive:  true,
			ExpiresAt: ptrTime(time.Now().UTC().Add(-time.Hour)),
		},
	}}
	store := &stubStore{values: map[string]string{}}
	svc, err := NewService(repo, store, logger.New(logger.Options{ServiceName: "test"}), time.Hour, "PADI")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store, repo
}

func TestVerify_PercentageCoupon(t *testing.T) {
	svc, _, _ := fixture(t)
	applied, err := svc.Verify(context.Background(), "save10", dec(t, "10000"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if applied.Kind != enums.CouponKindPercentage || !applied.Value.Equal(dec(t, "10")) {
		t.Fatalf("unexpected applied coupon %+v", applied)
	}
	if applied.Padi {
		t.Fatal("regular coupon should not take the padi path")
	}
}

func TestVerify_PadiPrefixTakesBespokePath(t *testing.T) {
	svc, _, _ := fixture(t)
	applied, err := svc.Verify(context.Background(), "padi-friend-42", dec(t, "150000"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !applied.Padi {
		t.Fatal("expected padi code path")
	}
	if applied.Code != "PADI-FRIEND-42" {
		t.Fatalf("code should be normalized upper-case, got %q", applied.Code)
	}
}

func TestVerify_Rejections(t *testing.T) {
	svc, _, _ := fixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		code     string
		subtotal string
		wantCode pkgerrors.Code
	}{
		{"unknown code", "NOPE", "10000", pkgerrors.CodeNotFound},
		{"inactive code", "RETIRED", "10000", pkgerrors.CodeValidation},
		{"expired code", "EXPIRED", "10000", pkgerrors.CodeValidation},
		{"below minimum subtotal", "FLAT500", "19999", pkgerrors.CodeValidation},
		{"blank code", "   ", "10000", pkgerrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(ctx, tt.code, dec(t, tt.subtotal))
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestApply_ReplacesPrevious(t *testing.T) {
	svc, _, _ := fixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	if _, err := svc.Apply(ctx, customerID, "SAVE10", dec(t, "30000")); err != nil {
		t.Fatalf("apply first: %v", err)
	}
	if _, err := svc.Apply(ctx, customerID, "FLAT500", dec(t, "30000")); err != nil {
		t.Fatalf("apply second: %v", err)
	}

	applied, err := svc.GetApplied(ctx, customerID)
	if err != nil {
		t.Fatalf("get applied: %v", err)
	}
	if applied == nil || applied.Code != "FLAT500" {
		t.Fatalf("expected FLAT500 to replace SAVE10, got %+v", applied)
	}
}

func TestGetApplied_NoneStored(t *testing.T) {
	svc, _, _ := fixture(t)
	applied, err := svc.GetApplied(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get applied: %v", err)
	}
	if applied != nil {
		t.Fatalf("expected nil, got %+v", applied)
	}
}

func TestGetApplied_CorruptStateDropped(t *testing.T) {
	svc, store, _ := fixture(t)
	customerID := uuid.New()
	store.values[store.AppliedCouponKey(customerID.String())] = "%%%"

	applied, err := svc.GetApplied(context.Background(), customerID)
	if err != nil {
		t.Fatalf("get applied: %v", err)
	}
	if applied != nil {
		t.Fatalf("corrupt state should be dropped, got %+v", applied)
	}
}

func TestRemove(t *testing.T) {
	svc, store, _ := fixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	if _, err := svc.Apply(ctx, customerID, "SAVE10", dec(t, "30000")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := svc.Remove(ctx, customerID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := store.values[store.AppliedCouponKey(customerID.String())]; ok {
		t.Fatal("applied coupon key should be deleted")
	}
}
