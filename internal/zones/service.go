package zones

import (
	"context"
	"fmt"
	"strings"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
)

type zoneRepo interface {
	ListActiveByState(ctx context.Context, state string) ([]models.DeliveryZone, error)
}

// Service resolves delivery zones for checkout.
type Service interface {
	ListByState(ctx context.Context, state string) ([]models.DeliveryZone, error)
	Resolve(ctx context.Context, state, city string) (*models.DeliveryZone, error)
}

type service struct {
	repo zoneRepo
}

// NewService builds the delivery zone service.
func NewService(repo zoneRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("zone repository required")
	}
	return &service{repo: repo}, nil
}

// ListByState returns the active zones for a state.
func (s *service) ListByState(ctx context.Context, state string) ([]models.DeliveryZone, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state is required")
	}
	return s.repo.ListActiveByState(ctx, state)
}

// Resolve picks the zone that applies to a state and city. A row naming the
// city wins over the state-wide row.
func (s *service) Resolve(ctx context.Context, state, city string) (*models.DeliveryZone, error) {
	zones, err := s.ListByState(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery available for this state")
	}

	city = strings.ToLower(strings.TrimSpace(city))
	var stateWide *models.DeliveryZone
	for i := range zones {
		zone := &zones[i]
		if zone.City == nil {
			if stateWide == nil {
				stateWide = zone
			}
			continue
		}
		if city != "" && strings.ToLower(*zone.City) == city {
			return zone, nil
		}
	}
	if stateWide != nil {
		return stateWide, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no delivery available for this city")
}
