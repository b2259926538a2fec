package zones

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
)

type stubRepo struct {
	zones map[string][]models.DeliveryZone
}

func (s *stubRepo) ListActiveByState(_ context.Context, state string) ([]models.DeliveryZone, error) {
	return s.zones[strings.ToLower(state)], nil
}

func zone(state string, city *string, fee string) models.DeliveryZone {
	return models.DeliveryZone{
		ID:           uuid.New(),
		State:        state,
		City:         city,
		Fee:          decimal.RequireFromString(fee),
		Duration:     "2-4 days",
		PickupPoints: []string{"Main Park", "City Mall"},
		IsActive:     true,
	}
}

func strPtr(s string) *string { return &s }

func fixture(t *testing.T) Service {
	t.Helper()
	repo := &stubRepo{zones: map[string][]models.DeliveryZone{
		"lagos": {
			zone("Lagos", strPtr("Ikeja"), "1200"),
			zone("Lagos", strPtr("Lekki"), "1800"),
			zone("Lagos", nil, "2500"),
		},
		"oyo": {
			zone("Oyo", nil, "3000"),
		},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListByState(t *testing.T) {
	svc := fixture(t)
	zones, err := svc.ListByState(context.Background(), "Lagos")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(zones) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(zones))
	}

	if _, err := svc.ListByState(context.Background(), " "); err == nil {
		t.Fatal("expected validation error for blank state")
	}
}

func TestResolve_CityMatchWins(t *testing.T) {
	svc := fixture(t)
	got, err := svc.Resolve(context.Background(), "Lagos", "lekki")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.City == nil || *got.City != "Lekki" {
		t.Fatalf("expected Lekki zone, got %+v", got)
	}
	if !got.Fee.Equal(decimal.RequireFromString("1800")) {
		t.Fatalf("unexpected fee %s", got.Fee)
	}
}

func TestResolve_FallsBackToStateWide(t *testing.T) {
	svc := fixture(t)
	got, err := svc.Resolve(context.Background(), "Lagos", "Badagry")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.City != nil {
		t.Fatalf("expected state-wide zone, got city %v", *got.City)
	}
}

func TestResolve_UnknownState(t *testing.T) {
	svc := fixture(t)
	_, err := svc.Resolve(context.Background(), "Kano", "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
