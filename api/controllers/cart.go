package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	cartsvc "github.com/padistore/padistore-backend/internal/cart"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

// CartFetch returns the customer's cart snapshot.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartAddItem adds a product or variation line, merging into an existing line
// with the same identity.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), customerID, cartsvc.AddItemInput{
			ProductID:   payload.ProductID,
			VariationID: payload.VariationID,
			Qty:         payload.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cart))
	}
}

// CartSetQuantity replaces the quantity on an existing line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetQuantity(r.Context(), customerID, payload.ProductID, payload.VariationID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartRemoveItem removes one line identified by product plus optional
// variation.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variationID, err := validators.ParseOptionalQueryUUID(r, "variation_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), customerID, productID, variationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartRemoveProduct removes every line belonging to the product, covering all
// of its variations at once.
func CartRemoveProduct(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveAllForProduct(r.Context(), customerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(&cartsvc.Cart{}))
	}
}

type addItemRequest struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Qty         int        `json:"qty" validate:"required,min=1"`
}

type setQuantityRequest struct {
	ProductID   uuid.UUID  `json:"product_id" validate:"required"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Qty         int        `json:"qty" validate:"required,min=1"`
}

type cartLineResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	VariationID   *uuid.UUID      `json:"variation_id,omitempty"`
	Name          string          `json:"name"`
	VariationName *string         `json:"variation_name,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Qty           int             `json:"qty"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Image         *string         `json:"image,omitempty"`
}

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	TotalQty  int                `json:"total_qty"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func newCartResponse(cart *cartsvc.Cart) cartResponse {
	if cart == nil {
		cart = &cartsvc.Cart{}
	}

	items := make([]cartLineResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartLineResponse{
			ProductID:     item.ProductID,
			VariationID:   item.VariationID,
			Name:          item.Name,
			VariationName: item.VariationName,
			UnitPrice:     item.UnitPrice,
			Qty:           item.Qty,
			LineTotal:     item.LineTotal(),
			Image:         item.Image,
		})
	}

	return cartResponse{
		Items:     items,
		TotalQty:  cart.TotalQty(),
		Subtotal:  cart.Subtotal(),
		UpdatedAt: cart.UpdatedAt,
	}
}
