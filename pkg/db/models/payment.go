package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/enums"
)

// Payment records one payment attempt against an order, including the gateway
// reference and, for pay-for-me, the shareable link token.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Reference        string              `gorm:"column:reference;not null;uniqueIndex"`
	Method           enums.PaymentMethod `gorm:"column:method;not null"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	AuthorizationURL *string             `gorm:"column:authorization_url"`
	ShareToken       *string             `gorm:"column:share_token;uniqueIndex"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
