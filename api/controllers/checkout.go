package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	checkoutsvc "github.com/padistore/padistore-backend/internal/checkout"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/types"
)

// CheckoutSelection returns the wizard state, starting at the shipping
// address step for new checkouts.
func CheckoutSelection(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection, err := svc.GetSelection(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSelectionResponse(selection))
	}
}

// CheckoutAddress saves the shipping contact block and advances to pickup
// selection.
func CheckoutAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection, err := svc.SaveShippingAddress(r.Context(), customerID, types.ShippingContact{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Address:   payload.Address,
			State:     payload.State,
			City:      payload.City,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSelectionResponse(selection))
	}
}

// CheckoutPickup records the pickup point (or home delivery) and advances to
// payment review.
func CheckoutPickup(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pickupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection, err := svc.SavePickupSelection(r.Context(), customerID, payload.PickupPoint)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSelectionResponse(selection))
	}
}

// CheckoutBack steps the wizard backwards without losing saved data.
func CheckoutBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection, err := svc.Back(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSelectionResponse(selection))
	}
}

// CheckoutReview computes the final totals for the payment review step.
func CheckoutReview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Review(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

// CheckoutSubmit turns the reviewed selection into an order. The
// Idempotency-Key header deduplicates retried submissions.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.Submit(r.Context(), customerID, checkoutsvc.SubmitInput{
			PaymentMethod:  method,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

type addressRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	State     string `json:"state" validate:"required"`
	City      string `json:"city" validate:"required"`
}

type pickupRequest struct {
	PickupPoint string `json:"pickup_point"`
}

type submitRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type selectionResponse struct {
	Step         string                `json:"step"`
	Contact      types.ShippingContact `json:"contact"`
	PickupPoint  *string               `json:"pickup_point,omitempty"`
	HomeDelivery bool                  `json:"home_delivery"`
}

func newSelectionResponse(selection *checkoutsvc.Selection) selectionResponse {
	return selectionResponse{
		Step:         string(selection.Step),
		Contact:      selection.Contact,
		PickupPoint:  selection.PickupPoint,
		HomeDelivery: selection.HomeDelivery,
	}
}

type quoteResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	PadiDiscount   decimal.Decimal `json:"padi_discount"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	FreeShipping   bool            `json:"free_shipping"`
	PadiApplied    bool            `json:"padi_applied"`
}

type summaryResponse struct {
	Cart      cartResponse      `json:"cart"`
	Selection selectionResponse `json:"selection"`
	Zone      zoneResponse      `json:"zone"`
	Quote     quoteResponse     `json:"quote"`
}

func newSummaryResponse(summary *checkoutsvc.Summary) summaryResponse {
	return summaryResponse{
		Cart:      newCartResponse(summary.Cart),
		Selection: newSelectionResponse(summary.Selection),
		Zone:      newZoneResponse(summary.Zone),
		Quote: quoteResponse{
			Subtotal:       summary.Quote.Subtotal,
			CouponDiscount: summary.Quote.CouponDiscount,
			PadiDiscount:   summary.Quote.PadiDiscount,
			Discount:       summary.Quote.Discount,
			DeliveryFee:    summary.Quote.DeliveryFee,
			Total:          summary.Quote.Total,
			FreeShipping:   summary.Quote.FreeShipping,
			PadiApplied:    summary.Quote.PadiApplied,
		},
	}
}
