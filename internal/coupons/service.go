package coupons

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	pkgredis "github.com/padistore/padistore-backend/pkg/redis"
)

type couponRepo interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type stateStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AppliedCouponKey(customerID string) string
}

// Applied is the promo state attached to a customer session. At most one is
// active at a time; applying a new code replaces the previous one. Padi codes
// take the bespoke percentage path instead of the coupon table.
type Applied struct {
	Code  string           `json:"code"`
	Kind  enums.CouponKind `json:"kind,omitempty"`
	Value decimal.Decimal  `json:"value"`
	Padi  bool             `json:"padi,omitempty"`
}

// Service verifies promo codes and owns the applied-coupon session state.
type Service interface {
	Verify(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error)
	Apply(ctx context.Context, customerID uuid.UUID, code string, subtotal decimal.Decimal) (*Applied, error)
	GetApplied(ctx context.Context, customerID uuid.UUID) (*Applied, error)
	Remove(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo       couponRepo
	store      stateStore
	logger     *logger.Logger
	ttl        time.Duration
	padiPrefix string
	now        func() time.Time
}

// NewService builds the coupon service. padiPrefix marks the codes routed to
// the bespoke Padi discount path.
func NewService(repo couponRepo, store stateStore, logg *logger.Logger, ttl time.Duration, padiPrefix string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("coupon ttl must be positive")
	}
	if strings.TrimSpace(padiPrefix) == "" {
		return nil, fmt.Errorf("padi code prefix required")
	}
	return &service{
		repo:       repo,
		store:      store,
		logger:     logg,
		ttl:        ttl,
		padiPrefix: strings.ToUpper(strings.TrimSpace(padiPrefix)),
		now:        time.Now,
	}, nil
}

// Verify resolves a code to its promo terms without persisting anything.
func (s *service) Verify(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	if subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be non-negative")
	}

	if strings.HasPrefix(code, s.padiPrefix) {
		return &Applied{Code: code, Padi: true}, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this code is no longer active")
	}
	now := s.now().UTC()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this code is not active yet")
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this code has expired")
	}
	if coupon.MinSubtotal != nil && subtotal.LessThan(*coupon.MinSubtotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order must be at least %s to use this code", coupon.MinSubtotal.StringFixed(2)))
	}

	return &Applied{
		Code:  coupon.Code,
		Kind:  coupon.Kind,
		Value: coupon.Value,
	}, nil
}

// Apply verifies the code and stores it as the customer's active promo,
// replacing any previous one.
func (s *service) Apply(ctx context.Context, customerID uuid.UUID, code string, subtotal decimal.Decimal) (*Applied, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	applied, err := s.Verify(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(applied)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode applied coupon")
	}
	if err := s.store.Set(ctx, s.store.AppliedCouponKey(customerID.String()), string(raw), s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist applied coupon")
	}
	return applied, nil
}

// GetApplied loads the active promo, or nil when none is stored. Unreadable
// state is dropped rather than surfaced.
func (s *service) GetApplied(ctx context.Context, customerID uuid.UUID) (*Applied, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	raw, err := s.store.Get(ctx, s.store.AppliedCouponKey(customerID.String()))
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applied coupon")
	}

	var applied Applied
	if err := json.Unmarshal([]byte(raw), &applied); err != nil {
		s.logger.Warn(s.logger.WithCustomerID(ctx, customerID.String()), "stored coupon is unreadable, dropping it")
		return nil, nil
	}
	return &applied, nil
}

// Remove clears the active promo.
func (s *service) Remove(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if err := s.store.Del(ctx, s.store.AppliedCouponKey(customerID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove applied coupon")
	}
	return nil
}
