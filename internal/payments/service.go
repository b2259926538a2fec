package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/paystack"
)

type paymentRepo interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindByShareToken(ctx context.Context, token string) (*models.Payment, error)
	FindPendingByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	SetAuthorizationURL(ctx context.Context, paymentID uuid.UUID, url string) error
	MarkPaid(ctx context.Context, paymentID uuid.UUID, paidAt time.Time) error
	MarkFailed(ctx context.Context, paymentID uuid.UUID) error
}

type orderStore interface {
	FindByIDForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error
}

type gateway interface {
	InitializeTransaction(ctx context.Context, params paystack.InitializeParams) (*paystack.Transaction, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// SharedPayment pairs a pay-for-me payment with its order for the payer view.
type SharedPayment struct {
	Payment *models.Payment
	Order   *models.Order
}

// Service owns payment attempts against orders: direct pay-now redirects,
// shareable pay-for-me links, and settlement verification.
type Service interface {
	InitiatePayNow(ctx context.Context, customerID, orderID uuid.UUID) (*models.Payment, error)
	CreatePayForMeLink(ctx context.Context, customerID, orderID uuid.UUID) (*models.Payment, error)
	GetShared(ctx context.Context, token string) (*SharedPayment, error)
	PayShared(ctx context.Context, token, payerEmail string) (*models.Payment, error)
	Verify(ctx context.Context, reference string) (*models.Payment, error)
}

type service struct {
	repo    paymentRepo
	orders  orderStore
	gateway gateway
	logger  *logger.Logger
	now     func() time.Time
}

// NewService builds the payment service.
func NewService(repo paymentRepo, orders orderStore, gw gateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		orders:  orders,
		gateway: gw,
		logger:  logg,
		now:     time.Now,
	}, nil
}

// InitiatePayNow opens a gateway transaction for the buyer and returns the
// payment with its hosted checkout URL. An open attempt for the order is
// reused instead of stacking duplicates.
func (s *service) InitiatePayNow(ctx context.Context, customerID, orderID uuid.UUID) (*models.Payment, error) {
	order, err := s.loadPayableOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	if pending, err := s.repo.FindPendingByOrderID(ctx, orderID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up pending payment")
	} else if pending != nil && pending.AuthorizationURL != nil {
		return pending, nil
	}

	reference := newPaymentReference(order.Reference)
	txn, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeParams{
		Email:     order.Contact.Email,
		Amount:    order.Total,
		Reference: reference,
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:          order.ID,
		Reference:        reference,
		Method:           enums.PaymentMethodPayNow,
		Status:           enums.PaymentStatusPending,
		Amount:           order.Total,
		AuthorizationURL: &txn.AuthorizationURL,
	}
	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return created, nil
}

// CreatePayForMeLink records a pending pay-for-me payment carrying a share
// token. The gateway transaction is opened later, when the payer follows the
// link, because the payer's email is not known yet.
func (s *service) CreatePayForMeLink(ctx context.Context, customerID, orderID uuid.UUID) (*models.Payment, error) {
	order, err := s.loadPayableOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	if pending, err := s.repo.FindPendingByOrderID(ctx, orderID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up pending payment")
	} else if pending != nil && pending.ShareToken != nil {
		return pending, nil
	}

	token := newShareToken()
	payment := &models.Payment{
		OrderID:    order.ID,
		Reference:  newPaymentReference(order.Reference),
		Method:     enums.PaymentMethodPayForMe,
		Status:     enums.PaymentStatusPending,
		Amount:     order.Total,
		ShareToken: &token,
	}
	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment link")
	}
	return created, nil
}

// GetShared resolves a share token for the payer-facing view.
func (s *service) GetShared(ctx context.Context, token string) (*SharedPayment, error) {
	payment, err := s.loadSharedPayment(ctx, token)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	return &SharedPayment{Payment: payment, Order: order}, nil
}

// PayShared opens the gateway transaction for a pay-for-me link using the
// payer's email and returns the payment with the checkout URL attached. The
// URL is persisted on first open; a reload returns the stored URL instead of
// re-initializing, since the gateway rejects a reused reference.
func (s *service) PayShared(ctx context.Context, token, payerEmail string) (*models.Payment, error) {
	payerEmail = strings.TrimSpace(payerEmail)
	if payerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer email is required")
	}

	payment, err := s.loadSharedPayment(ctx, token)
	if err != nil {
		return nil, err
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this payment link has already been settled")
	}
	if payment.AuthorizationURL != nil {
		return payment, nil
	}

	txn, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeParams{
		Email:     payerEmail,
		Amount:    payment.Amount,
		Reference: payment.Reference,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAuthorizationURL(ctx, payment.ID, txn.AuthorizationURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist authorization url")
	}
	payment.AuthorizationURL = &txn.AuthorizationURL
	return payment, nil
}

// Verify checks settlement with the gateway and, on success, marks both the
// payment and its order paid. Verification is safe to repeat.
func (s *service) Verify(ctx context.Context, reference string) (*models.Payment, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}

	payment, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status == enums.PaymentStatusPaid {
		return payment, nil
	}

	txn, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch {
	case txn.Settled():
		paidAt := s.now().UTC()
		if txn.PaidAt != nil {
			paidAt = txn.PaidAt.UTC()
		}
		if err := s.repo.MarkPaid(ctx, payment.ID, paidAt); err != nil {
			return nil, err
		}
		if err := s.orders.MarkPaid(ctx, payment.OrderID, paidAt); err != nil {
			ctx := s.logger.WithOrderID(ctx, payment.OrderID.String())
			s.logger.Error(ctx, "payment settled but order transition failed", err)
			return nil, err
		}
		payment.Status = enums.PaymentStatusPaid
		payment.PaidAt = &paidAt
	case txn.Status == "failed" || txn.Status == "abandoned":
		if err := s.repo.MarkFailed(ctx, payment.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
		}
		payment.Status = enums.PaymentStatusFailed
	}
	return payment, nil
}

func (s *service) loadPayableOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and order id are required")
	}
	order, err := s.orders.FindByIDForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPendingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is not awaiting payment")
	}
	return order, nil
}

func (s *service) loadSharedPayment(ctx context.Context, token string) (*models.Payment, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment link token is required")
	}
	return s.repo.FindByShareToken(ctx, token)
}

func newPaymentReference(orderReference string) string {
	return orderReference + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
