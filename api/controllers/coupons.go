package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	cartsvc "github.com/padistore/padistore-backend/internal/cart"
	"github.com/padistore/padistore-backend/internal/coupons"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

// CouponVerify checks a promo code against the current cart subtotal without
// applying it.
func CouponVerify(svc coupons.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := cartSubtotal(r, carts, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := svc.Verify(r.Context(), payload.Code, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newAppliedResponse(applied))
	}
}

// CouponApply verifies the code and stores it as the customer's applied
// coupon, replacing any previous one.
func CouponApply(svc coupons.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := cartSubtotal(r, carts, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := svc.Apply(r.Context(), customerID, payload.Code, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newAppliedResponse(applied))
	}
}

// CouponFetch returns the currently applied coupon, if any.
func CouponFetch(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := svc.GetApplied(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if applied == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, newAppliedResponse(applied))
	}
}

// CouponRemove clears the applied coupon.
func CouponRemove(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func cartSubtotal(r *http.Request, carts cartsvc.Service, customerID uuid.UUID) (decimal.Decimal, error) {
	cart, err := carts.Get(r.Context(), customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Subtotal(), nil
}

type couponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type appliedResponse struct {
	Code  string          `json:"code"`
	Kind  string          `json:"kind,omitempty"`
	Value decimal.Decimal `json:"value"`
	Padi  bool            `json:"padi,omitempty"`
}

func newAppliedResponse(applied *coupons.Applied) appliedResponse {
	return appliedResponse{
		Code:  applied.Code,
		Kind:  string(applied.Kind),
		Value: applied.Value,
		Padi:  applied.Padi,
	}
}
