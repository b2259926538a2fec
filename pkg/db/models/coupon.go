package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/enums"
)

// Coupon is a redeemable discount code. Percentage coupons carry a value in
// [0,100]; fixed coupons carry a flat currency amount.
type Coupon struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string           `gorm:"column:code;not null;uniqueIndex"`
	Kind        enums.CouponKind `gorm:"column:kind;not null"`
	Value       decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	Description *string          `gorm:"column:description"`
	MinSubtotal *decimal.Decimal `gorm:"column:min_subtotal;type:numeric(12,2)"`
	StartsAt    *time.Time       `gorm:"column:starts_at"`
	ExpiresAt   *time.Time       `gorm:"column:expires_at"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
