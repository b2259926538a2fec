package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/pagination"
)

type orderRepo interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByIDForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID uuid.UUID, key string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error
}

// ListResult is one page of orders plus the cursor for the next one.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// Service exposes order reads and the paid transition. Order creation lives
// in the checkout coordinator, which owns the submission flow end to end.
type Service interface {
	Get(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error
}

type service struct {
	repo orderRepo
}

// NewService builds the order service.
func NewService(repo orderRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// NewReference returns a public order reference.
func NewReference() string {
	return "PS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Get loads an order scoped to its owner.
func (s *service) Get(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and order id are required")
	}
	return s.repo.FindByIDForCustomer(ctx, customerID, orderID)
}

// GetByReference loads an order by its public reference. Used by the
// pay-for-me flow, where the payer is not the order's owner.
func (s *service) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	return s.repo.FindByReference(ctx, reference)
}

// List returns a page of the customer's orders.
func (s *service) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	orders, err := s.repo.ListByCustomer(ctx, customerID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListResult{Orders: orders}
	if len(orders) > limit {
		result.Orders = orders[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// MarkPaid transitions an order to paid.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.MarkPaid(ctx, orderID, paidAt)
}
