package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/internal/cart"
	"github.com/padistore/padistore-backend/internal/coupons"
	"github.com/padistore/padistore-backend/internal/pricing"
	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/types"
)

type stubCarts struct {
	cart    *cart.Cart
	cleared bool
}

func (s *stubCarts) Get(_ context.Context, _ uuid.UUID) (*cart.Cart, error) {
	if s.cart == nil {
		return &cart.Cart{}, nil
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(_ context.Context, _ uuid.UUID) error {
	s.cleared = true
	s.cart = &cart.Cart{}
	return nil
}

type stubCoupons struct {
	applied *coupons.Applied
	removed bool
}

func (s *stubCoupons) GetApplied(_ context.Context, _ uuid.UUID) (*coupons.Applied, error) {
	return s.applied, nil
}

func (s *stubCoupons) Remove(_ context.Context, _ uuid.UUID) error {
	s.removed = true
	s.applied = nil
	return nil
}

type stubZones struct {
	zone *models.DeliveryZone
}

func (s *stubZones) Resolve(_ context.Context, _, _ string) (*models.DeliveryZone, error) {
	if s.zone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery available for this state")
	}
	return s.zone, nil
}

type stubOrders struct {
	orders []*models.Order
}

func (s *stubOrders) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubOrders) FindByIdempotencyKey(_ context.Context, customerID uuid.UUID, key string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.CustomerID == customerID && order.IdempotencyKey != nil && *order.IdempotencyKey == key {
			return order, nil
		}
	}
	return nil, nil
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

func (s *stubStore) CheckoutSelectionKey(customerID string) string {
	return "ps:checkout:" + customerID
}

type fixture struct {
	svc     Service
	carts   *stubCarts
	coupons *stubCoupons
	zones   *stubZones
	orders  *stubOrders
	store   *stubStore
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func validContact() types.ShippingContact {
	return types.ShippingContact{
		FirstName: "Amaka",
		LastName:  "Obi",
		Email:     "amaka@example.com",
		Phone:     "08031234567",
		Address:   "12 Allen Avenue",
		State:     "Lagos",
		City:      "Ikeja",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	calc, err := pricing.NewCalculator(config.PricingConfig{
		FreeShippingThreshold: "53000",
		PadiCodeThreshold:     "100000",
		PadiCodePercent:       "2",
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	f := &fixture{
		carts: &stubCarts{cart: &cart.Cart{Items: []cart.LineItem{
			{ProductID: uuid.New(), Name: "Shea Butter Jar", UnitPrice: dec(t, "5000"), Qty: 2},
		}}},
		coupons: &stubCoupons{},
		zones: &stubZones{zone: &models.DeliveryZone{
			State:        "Lagos",
			Fee:          dec(t, "1500"),
			Duration:     "1-2 days",
			PickupPoints: []string{"Ikeja City Mall", "Computer Village"},
			IsActive:     true,
		}},
		orders: &stubOrders{},
		store:  &stubStore{values: map[string]string{}},
	}

	svc, err := NewService(
		f.carts, f.coupons, f.zones, f.orders, calc, f.store,
		logger.New(logger.Options{ServiceName: "test"}), nil, time.Hour,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func advanceToReview(t *testing.T, f *fixture, customerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.SaveShippingAddress(ctx, customerID, validContact()); err != nil {
		t.Fatalf("save address: %v", err)
	}
	if _, err := f.svc.SavePickupSelection(ctx, customerID, "Ikeja City Mall"); err != nil {
		t.Fatalf("save pickup: %v", err)
	}
}

func TestSaveShippingAddress_GatesOnValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	contact := validContact()
	contact.State = ""
	_, err := f.svc.SaveShippingAddress(ctx, customerID, contact)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The wizard must still be on the first step.
	selection, err := f.svc.GetSelection(ctx, customerID)
	if err != nil {
		t.Fatalf("get selection: %v", err)
	}
	if selection.Step != enums.CheckoutStepShippingAddress {
		t.Fatalf("step advanced despite validation failure: %s", selection.Step)
	}
}

func TestSaveShippingAddress_AdvancesStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	selection, err := f.svc.SaveShippingAddress(ctx, customerID, validContact())
	if err != nil {
		t.Fatalf("save address: %v", err)
	}
	if selection.Step != enums.CheckoutStepPickupSelection {
		t.Fatalf("expected pickup step, got %s", selection.Step)
	}
}

func TestSaveShippingAddress_StateChangeDiscardsPickup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	contact := validContact()
	contact.State = "Oyo"
	contact.City = "Ibadan"
	selection, err := f.svc.SaveShippingAddress(ctx, customerID, contact)
	if err != nil {
		t.Fatalf("save address: %v", err)
	}
	if selection.PickupPoint != nil {
		t.Fatalf("pickup selection should be discarded on state change, got %q", *selection.PickupPoint)
	}
}

func TestSavePickupSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	// Pickup before address is rejected.
	if _, err := f.svc.SavePickupSelection(ctx, customerID, "Ikeja City Mall"); err == nil {
		t.Fatal("expected rejection before shipping address")
	}

	if _, err := f.svc.SaveShippingAddress(ctx, customerID, validContact()); err != nil {
		t.Fatalf("save address: %v", err)
	}

	if _, err := f.svc.SavePickupSelection(ctx, customerID, "Somewhere Else"); err == nil {
		t.Fatal("expected rejection of unknown pickup point")
	}

	selection, err := f.svc.SavePickupSelection(ctx, customerID, "Ikeja City Mall")
	if err != nil {
		t.Fatalf("save pickup: %v", err)
	}
	if selection.Step != enums.CheckoutStepPaymentReview {
		t.Fatalf("expected review step, got %s", selection.Step)
	}
}

func TestSavePickupSelection_HomeDeliveryZone(t *testing.T) {
	f := newFixture(t)
	f.zones.zone.HomeDelivery = true
	f.zones.zone.PickupPoints = nil
	ctx := context.Background()
	customerID := uuid.New()

	if _, err := f.svc.SaveShippingAddress(ctx, customerID, validContact()); err != nil {
		t.Fatalf("save address: %v", err)
	}
	selection, err := f.svc.SavePickupSelection(ctx, customerID, "")
	if err != nil {
		t.Fatalf("save pickup: %v", err)
	}
	if !selection.HomeDelivery || selection.PickupPoint != nil {
		t.Fatalf("expected auto home delivery, got %+v", selection)
	}
}

func TestBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	selection, err := f.svc.Back(ctx, customerID)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if selection.Step != enums.CheckoutStepPickupSelection {
		t.Fatalf("expected pickup step, got %s", selection.Step)
	}
}

func TestReview_ComputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	summary, err := f.svc.Review(ctx, customerID)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !summary.Quote.Subtotal.Equal(dec(t, "10000")) {
		t.Fatalf("subtotal = %s, want 10000", summary.Quote.Subtotal)
	}
	if !summary.Quote.Total.Equal(dec(t, "11500")) {
		t.Fatalf("total = %s, want 11500", summary.Quote.Total)
	}
}

func TestSubmit_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)
	f.carts.cart = &cart.Cart{}
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	_, err := f.svc.Submit(ctx, customerID, SubmitInput{
		PaymentMethod:  enums.PaymentMethodPayNow,
		IdempotencyKey: "attempt-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestSubmit_CreatesOrderAndClearsState(t *testing.T) {
	f := newFixture(t)
	f.coupons.applied = &coupons.Applied{
		Code:  "SAVE10",
		Kind:  enums.CouponKindPercentage,
		Value: dec(t, "10"),
	}
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	order, err := f.svc.Submit(ctx, customerID, SubmitInput{
		PaymentMethod:  enums.PaymentMethodPayNow,
		IdempotencyKey: "attempt-1",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if order.Status != enums.OrderStatusPendingPayment {
		t.Fatalf("unexpected status %s", order.Status)
	}
	if !order.Subtotal.Equal(dec(t, "10000")) || !order.Discount.Equal(dec(t, "1000")) {
		t.Fatalf("unexpected amounts subtotal=%s discount=%s", order.Subtotal, order.Discount)
	}
	if !order.Total.Equal(dec(t, "10500")) {
		t.Fatalf("total = %s, want 10500", order.Total)
	}
	if len(order.LineItems) != 1 || order.LineItems[0].Qty != 2 {
		t.Fatalf("unexpected line items %+v", order.LineItems)
	}
	if order.CouponCode == nil || *order.CouponCode != "SAVE10" {
		t.Fatalf("order should carry the applied promo code, got %v", order.CouponCode)
	}

	if !f.carts.cleared {
		t.Fatal("cart should be cleared after submission")
	}
	if !f.coupons.removed {
		t.Fatal("applied coupon should be cleared after submission")
	}
	if _, ok := f.store.values[f.store.CheckoutSelectionKey(customerID.String())]; ok {
		t.Fatal("checkout selection should be cleared after submission")
	}
}

func TestSubmit_IdempotentRetryReturnsSameOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	advanceToReview(t, f, customerID)

	first, err := f.svc.Submit(ctx, customerID, SubmitInput{
		PaymentMethod:  enums.PaymentMethodPayNow,
		IdempotencyKey: "attempt-1",
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := f.svc.Submit(ctx, customerID, SubmitInput{
		PaymentMethod:  enums.PaymentMethodPayNow,
		IdempotencyKey: "attempt-1",
	})
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("retry produced a different order: %s vs %s", first.ID, second.ID)
	}
	if len(f.orders.orders) != 1 {
		t.Fatalf("expected exactly one stored order, got %d", len(f.orders.orders))
	}
	if first.CouponCode != nil {
		t.Fatalf("order without an applied coupon should have no promo code, got %q", *first.CouponCode)
	}
}

func TestSubmit_RequiresCompletedWizard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	_, err := f.svc.Submit(ctx, customerID, SubmitInput{
		PaymentMethod:  enums.PaymentMethodPayNow,
		IdempotencyKey: "attempt-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateContact_PhoneShapes(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"08031234567", true},
		{"0803 123 4567", true},
		{"0803-123-4567", true},
		{"803123456", false},
		{"080312345678", false},
		{"0803123456a", false},
		{"", false},
	}
	for _, tt := range tests {
		contact := validContact()
		contact.Phone = tt.phone
		err := ValidateContact(contact)
		if tt.valid && err != nil {
			t.Fatalf("phone %q should validate: %v", tt.phone, err)
		}
		if !tt.valid && err == nil {
			t.Fatalf("phone %q should be rejected", tt.phone)
		}
	}
}
