package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/padistore/padistore-backend/pkg/db/models"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
)

// Repository owns payment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a payment record.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// FindByReference loads a payment by its gateway reference.
func (r *Repository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, err
	}
	return &payment, nil
}

// FindByShareToken loads a pay-for-me payment by its link token.
func (r *Repository) FindByShareToken(ctx context.Context, token string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "share_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment link not found")
		}
		return nil, err
	}
	return &payment, nil
}

// FindPendingByOrderID returns the open payment attempt for an order, if any.
func (r *Repository) FindPendingByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "order_id = ? AND status = ?", orderID, enums.PaymentStatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// SetAuthorizationURL stores the hosted checkout URL opened for a payment.
func (r *Repository) SetAuthorizationURL(ctx context.Context, paymentID uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("authorization_url", url).Error
}

// MarkPaid flips a pending payment to paid exactly once.
func (r *Repository) MarkPaid(ctx context.Context, paymentID uuid.UUID, paidAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":  enums.PaymentStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment is not pending")
	}
	return nil
}

// MarkFailed flips a pending payment to failed.
func (r *Repository) MarkFailed(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, enums.PaymentStatusPending).
		Update("status", enums.PaymentStatusFailed).Error
}
