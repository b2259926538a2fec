package zones

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/padistore/padistore-backend/pkg/db/models"
)

// Repository owns delivery zone persistence.
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

// ListActiveByState returns the active zones for a state, city-specific rows
// first so callers can prefer the narrowest match.
func (r *Repository) ListActiveByState(ctx context.Context, state string) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	err := r.db.WithContext(ctx).
		Where("is_active = TRUE AND LOWER(state) = ?", strings.ToLower(strings.TrimSpace(state))).
		Order("city IS NULL, city ASC").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}
