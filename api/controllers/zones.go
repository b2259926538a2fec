package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/internal/zones"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

// ZoneList returns the active delivery zones for a state.
func ZoneList(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "zone service unavailable"))
			return
		}

		state := strings.TrimSpace(r.URL.Query().Get("state"))
		if state == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "state query parameter required"))
			return
		}

		records, err := svc.ListByState(r.Context(), state)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]zoneResponse, 0, len(records))
		for i := range records {
			items = append(items, newZoneResponse(&records[i]))
		}

		responses.WriteSuccess(w, zoneListResponse{Zones: items})
	}
}

type zoneListResponse struct {
	Zones []zoneResponse `json:"zones"`
}

type zoneResponse struct {
	ID           uuid.UUID       `json:"id"`
	State        string          `json:"state"`
	City         *string         `json:"city,omitempty"`
	Fee          decimal.Decimal `json:"fee"`
	Duration     string          `json:"duration"`
	PickupPoints []string        `json:"pickup_points"`
	HomeDelivery bool            `json:"home_delivery"`
}

func newZoneResponse(record *models.DeliveryZone) zoneResponse {
	return zoneResponse{
		ID:           record.ID,
		State:        record.State,
		City:         record.City,
		Fee:          record.Fee,
		Duration:     record.Duration,
		PickupPoints: record.PickupPoints,
		HomeDelivery: record.HomeDelivery,
	}
}
