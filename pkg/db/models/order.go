package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/enums"
	"github.com/padistore/padistore-backend/pkg/types"
)

// Order is the immutable snapshot produced by checkout submission. Amounts are
// frozen at creation; later catalog changes never touch an existing order.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference      string                `gorm:"column:reference;not null;uniqueIndex"`
	CustomerID     uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	Status         enums.OrderStatus     `gorm:"column:status;not null;default:'pending_payment'"`
	Contact        types.ShippingContact `gorm:"column:contact;type:jsonb;not null"`
	DeliveryState  string                `gorm:"column:delivery_state;not null"`
	DeliveryCity   string                `gorm:"column:delivery_city;not null"`
	PickupPoint    *string               `gorm:"column:pickup_point"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	Subtotal       decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount       decimal.Decimal       `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	DeliveryFee    decimal.Decimal       `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Total          decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	CouponCode     *string               `gorm:"column:coupon_code"`
	IdempotencyKey *string               `gorm:"column:idempotency_key;uniqueIndex"`
	LineItems      []OrderLineItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt         *time.Time            `gorm:"column:paid_at"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem captures the snapshot of each cart line within an order.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariationID *uuid.UUID      `gorm:"column:variation_id;type:uuid"`
	Name        string          `gorm:"column:name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Qty         int             `gorm:"column:qty;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
