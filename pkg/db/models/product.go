package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Variable products carry one or more
// variations; simple products are sold at the product price directly.
type Product struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug          string             `gorm:"column:slug;not null;uniqueIndex"`
	Name          string             `gorm:"column:name;not null"`
	Description   *string            `gorm:"column:description"`
	Category      string             `gorm:"column:category;not null;index"`
	Price         decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	StockQty      int                `gorm:"column:stock_qty;not null;default:0"`
	IsVariable    bool               `gorm:"column:is_variable;not null;default:false"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	FeaturedImage *string            `gorm:"column:featured_image"`
	Variations    []ProductVariation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariation is one purchasable configuration of a variable product.
type ProductVariation struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQty  int             `gorm:"column:stock_qty;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
