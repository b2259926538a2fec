package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/internal/cart"
	"github.com/padistore/padistore-backend/internal/coupons"
	"github.com/padistore/padistore-backend/internal/orders"
	"github.com/padistore/padistore-backend/internal/pricing"
	"github.com/padistore/padistore-backend/pkg/db"
	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/metrics"
	pkgredis "github.com/padistore/padistore-backend/pkg/redis"
	"github.com/padistore/padistore-backend/pkg/types"
)

type cartService interface {
	Get(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type couponService interface {
	GetApplied(ctx context.Context, customerID uuid.UUID) (*coupons.Applied, error)
	Remove(ctx context.Context, customerID uuid.UUID) error
}

type zoneService interface {
	Resolve(ctx context.Context, state, city string) (*models.DeliveryZone, error)
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID uuid.UUID, key string) (*models.Order, error)
}

type stateStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSelectionKey(customerID string) string
}

// Selection is the persisted wizard state for one customer.
type Selection struct {
	Step         enums.CheckoutStep    `json:"step"`
	Contact      types.ShippingContact `json:"contact"`
	PickupPoint  *string               `json:"pickup_point,omitempty"`
	HomeDelivery bool                  `json:"home_delivery"`
}

// Summary is the review payload for the final step.
type Summary struct {
	Cart      *cart.Cart
	Selection *Selection
	Zone      *models.DeliveryZone
	Applied   *coupons.Applied
	Quote     *pricing.Quote
}

// SubmitInput finalizes checkout into an order.
type SubmitInput struct {
	PaymentMethod  enums.PaymentMethod
	IdempotencyKey string
}

// Service drives the checkout wizard and turns its terminal step into exactly
// one order per submission intent.
type Service interface {
	GetSelection(ctx context.Context, customerID uuid.UUID) (*Selection, error)
	SaveShippingAddress(ctx context.Context, customerID uuid.UUID, contact types.ShippingContact) (*Selection, error)
	SavePickupSelection(ctx context.Context, customerID uuid.UUID, pickupPoint string) (*Selection, error)
	Back(ctx context.Context, customerID uuid.UUID) (*Selection, error)
	Review(ctx context.Context, customerID uuid.UUID) (*Summary, error)
	Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.Order, error)
}

type service struct {
	carts      cartService
	coupons    couponService
	zones      zoneService
	orderRepo  orderStore
	calculator *pricing.Calculator
	store      stateStore
	logger     *logger.Logger
	metrics    *metrics.HTTPMetrics
	ttl        time.Duration
}

// NewService builds the checkout coordinator.
func NewService(
	carts cartService,
	couponSvc couponService,
	zoneSvc zoneService,
	orderRepo orderStore,
	calculator *pricing.Calculator,
	store stateStore,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	ttl time.Duration,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if zoneSvc == nil {
		return nil, fmt.Errorf("zone service required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order store required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("selection ttl must be positive")
	}
	return &service{
		carts:      carts,
		coupons:    couponSvc,
		zones:      zoneSvc,
		orderRepo:  orderRepo,
		calculator: calculator,
		store:      store,
		logger:     logg,
		metrics:    httpMetrics,
		ttl:        ttl,
	}, nil
}

// GetSelection restores the saved wizard state, or starts at the first step.
func (s *service) GetSelection(ctx context.Context, customerID uuid.UUID) (*Selection, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.load(ctx, customerID)
}

// SaveShippingAddress validates the contact block and advances to pickup
// selection. Changing the state invalidates any previously chosen pickup
// point, since pickup points belong to a state's zones.
func (s *service) SaveShippingAddress(ctx context.Context, customerID uuid.UUID, contact types.ShippingContact) (*Selection, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if err := ValidateContact(contact); err != nil {
		return nil, err
	}

	selection, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(selection.Contact.State, contact.State) {
		selection.PickupPoint = nil
		selection.HomeDelivery = false
	}
	selection.Contact = contact
	selection.Step = enums.CheckoutStepPickupSelection

	if err := s.save(ctx, customerID, selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// SavePickupSelection records the pickup choice and advances to payment
// review. Zones flagged home-delivery-only need no pickup point; everywhere
// else the point must be one the zone actually offers.
func (s *service) SavePickupSelection(ctx context.Context, customerID uuid.UUID, pickupPoint string) (*Selection, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	selection, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if selection.Step == enums.CheckoutStepShippingAddress {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address must be completed first")
	}

	zone, err := s.zones.Resolve(ctx, selection.Contact.State, selection.Contact.City)
	if err != nil {
		return nil, err
	}

	if zone.HomeDelivery {
		selection.PickupPoint = nil
		selection.HomeDelivery = true
	} else {
		pickupPoint = strings.TrimSpace(pickupPoint)
		if pickupPoint == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a pickup point is required")
		}
		if !containsPoint(zone.PickupPoints, pickupPoint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup point is not available in this zone")
		}
		selection.PickupPoint = &pickupPoint
		selection.HomeDelivery = false
	}
	selection.Step = enums.CheckoutStepPaymentReview

	if err := s.save(ctx, customerID, selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// Back retreats one wizard step.
func (s *service) Back(ctx context.Context, customerID uuid.UUID) (*Selection, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	selection, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	selection.Step = selection.Step.Prev()

	if err := s.save(ctx, customerID, selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// Review assembles the final totals for the payment step.
func (s *service) Review(ctx context.Context, customerID uuid.UUID) (*Summary, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	selection, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if selection.Step != enums.CheckoutStepPaymentReview {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout is not ready for review")
	}
	return s.buildSummary(ctx, customerID, selection)
}

// Submit finalizes checkout into an order. The idempotency key makes a retry
// of the same intent return the already created order instead of a duplicate.
// On success the cart, the applied coupon, and the wizard state are cleared.
func (s *service) Submit(ctx context.Context, customerID uuid.UUID, input SubmitInput) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}

	if existing, err := s.orderRepo.FindByIdempotencyKey(ctx, customerID, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup")
	} else if existing != nil {
		s.metrics.IncCheckout("duplicate")
		return existing, nil
	}

	selection, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if selection.Step != enums.CheckoutStepPaymentReview {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout steps are not complete")
	}

	summary, err := s.buildSummary(ctx, customerID, selection)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(customerID, key, input.PaymentMethod, summary)
	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		if db.IsUniqueViolation(err, "idempotency_key") {
			if existing, lookupErr := s.orderRepo.FindByIdempotencyKey(ctx, customerID, key); lookupErr == nil && existing != nil {
				s.metrics.IncCheckout("duplicate")
				return existing, nil
			}
		}
		s.metrics.IncCheckout("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.finishSubmission(ctx, customerID, created)
	s.metrics.IncCheckout("submitted")
	return created, nil
}

// finishSubmission clears the session state that fed the order. The order is
// already durable, so failures here are logged and not surfaced.
func (s *service) finishSubmission(ctx context.Context, customerID uuid.UUID, order *models.Order) {
	ctx = s.logger.WithOrderID(s.logger.WithCustomerID(ctx, customerID.String()), order.ID.String())
	if err := s.carts.Clear(ctx, customerID); err != nil {
		s.logger.Warn(ctx, "cart was not cleared after order creation")
	}
	if err := s.coupons.Remove(ctx, customerID); err != nil {
		s.logger.Warn(ctx, "applied coupon was not cleared after order creation")
	}
	if err := s.store.Del(ctx, s.store.CheckoutSelectionKey(customerID.String())); err != nil {
		s.logger.Warn(ctx, "checkout selection was not cleared after order creation")
	}
	s.logger.Info(ctx, "order created")
}

func (s *service) buildSummary(ctx context.Context, customerID uuid.UUID, selection *Selection) (*Summary, error) {
	currentCart, err := s.carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if currentCart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	applied, err := s.coupons.GetApplied(ctx, customerID)
	if err != nil {
		return nil, err
	}

	zone, err := s.zones.Resolve(ctx, selection.Contact.State, selection.Contact.City)
	if err != nil {
		return nil, err
	}

	input := pricing.Input{DeliveryFee: zone.Fee}
	for _, item := range currentCart.Items {
		input.Lines = append(input.Lines, pricing.Line{UnitPrice: item.UnitPrice, Qty: item.Qty})
	}
	if applied != nil {
		if applied.Padi {
			input.PadiCode = true
		} else {
			input.Coupon = &pricing.Coupon{Kind: applied.Kind, Value: applied.Value}
		}
	}

	quote, err := s.calculator.Quote(input)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Cart:      currentCart,
		Selection: selection,
		Zone:      zone,
		Applied:   applied,
		Quote:     quote,
	}, nil
}

func (s *service) buildOrder(customerID uuid.UUID, key string, method enums.PaymentMethod, summary *Summary) *models.Order {
	order := &models.Order{
		Reference:      orders.NewReference(),
		CustomerID:     customerID,
		Status:         enums.OrderStatusPendingPayment,
		Contact:        summary.Selection.Contact,
		DeliveryState:  summary.Selection.Contact.State,
		DeliveryCity:   summary.Selection.Contact.City,
		PickupPoint:    summary.Selection.PickupPoint,
		PaymentMethod:  method,
		Subtotal:       summary.Quote.Subtotal,
		Discount:       summary.Quote.Discount,
		DeliveryFee:    summary.Quote.DeliveryFee,
		Total:          summary.Quote.Total,
		IdempotencyKey: &key,
	}
	if summary.Applied != nil {
		code := summary.Applied.Code
		order.CouponCode = &code
	}

	for _, item := range summary.Cart.Items {
		name := item.Name
		if item.VariationName != nil {
			name = name + " - " + *item.VariationName
		}
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Name:        name,
			UnitPrice:   item.UnitPrice,
			Qty:         item.Qty,
			LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))),
		})
	}
	return order
}

func (s *service) load(ctx context.Context, customerID uuid.UUID) (*Selection, error) {
	raw, err := s.store.Get(ctx, s.store.CheckoutSelectionKey(customerID.String()))
	if err != nil {
		if pkgredis.IsNil(err) {
			return &Selection{Step: enums.CheckoutStepShippingAddress}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout selection")
	}

	var selection Selection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		s.logger.Warn(s.logger.WithCustomerID(ctx, customerID.String()), "stored checkout selection is unreadable, restarting wizard")
		return &Selection{Step: enums.CheckoutStepShippingAddress}, nil
	}
	if !selection.Step.IsValid() {
		selection.Step = enums.CheckoutStepShippingAddress
	}
	return &selection, nil
}

func (s *service) save(ctx context.Context, customerID uuid.UUID, selection *Selection) error {
	raw, err := json.Marshal(selection)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout selection")
	}
	if err := s.store.Set(ctx, s.store.CheckoutSelectionKey(customerID.String()), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout selection")
	}
	return nil
}

func containsPoint(points []string, candidate string) bool {
	for _, point := range points {
		if strings.EqualFold(point, candidate) {
			return true
		}
	}
	return false
}
