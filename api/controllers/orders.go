package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	"github.com/padistore/padistore-backend/internal/orders"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/pagination"
	"github.com/padistore/padistore-backend/pkg/types"
)

// OrderList returns one page of the customer's orders, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), customerID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(result.Orders))
		for i := range result.Orders {
			items = append(items, newOrderResponse(&result.Orders[i]))
		}

		responses.WriteSuccess(w, orderListResponse{
			Orders:     items,
			NextCursor: result.NextCursor,
		})
	}
}

// OrderDetail returns one order owned by the customer.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(record))
	}
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type orderLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VariationID *uuid.UUID      `json:"variation_id,omitempty"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type orderResponse struct {
	ID            uuid.UUID             `json:"id"`
	Reference     string                `json:"reference"`
	Status        string                `json:"status"`
	Contact       types.ShippingContact `json:"contact"`
	DeliveryState string                `json:"delivery_state"`
	DeliveryCity  string                `json:"delivery_city"`
	PickupPoint   *string               `json:"pickup_point,omitempty"`
	PaymentMethod string                `json:"payment_method"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	DeliveryFee   decimal.Decimal       `json:"delivery_fee"`
	Total         decimal.Decimal       `json:"total"`
	CouponCode    *string               `json:"coupon_code,omitempty"`
	LineItems     []orderLineResponse   `json:"line_items"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func newOrderResponse(record *models.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(record.LineItems))
	for _, item := range record.LineItems {
		lines = append(lines, orderLineResponse{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			Qty:         item.Qty,
			LineTotal:   item.LineTotal,
		})
	}

	return orderResponse{
		ID:            record.ID,
		Reference:     record.Reference,
		Status:        string(record.Status),
		Contact:       record.Contact,
		DeliveryState: record.DeliveryState,
		DeliveryCity:  record.DeliveryCity,
		PickupPoint:   record.PickupPoint,
		PaymentMethod: string(record.PaymentMethod),
		Subtotal:      record.Subtotal,
		Discount:      record.Discount,
		DeliveryFee:   record.DeliveryFee,
		Total:         record.Total,
		CouponCode:    record.CouponCode,
		LineItems:     lines,
		PaidAt:        record.PaidAt,
		CreatedAt:     record.CreatedAt,
	}
}
