package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DeliveryZone defines shipping for a state (optionally narrowed to a city):
// the fee, a human-readable duration estimate, and the pickup points a buyer
// can collect from.
type DeliveryZone struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	State        string          `gorm:"column:state;not null;index"`
	City         *string         `gorm:"column:city"`
	Fee          decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null"`
	Duration     string          `gorm:"column:duration;not null"`
	PickupPoints pq.StringArray  `gorm:"column:pickup_points;type:text[];not null;default:ARRAY[]::text[]"`
	HomeDelivery bool            `gorm:"column:home_delivery;not null;default:false"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
