package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	"github.com/padistore/padistore-backend/internal/payments"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

// PaymentPayNow initializes a gateway transaction for the order and returns
// the authorization redirect.
func PaymentPayNow(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
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

		payment, err := svc.InitiatePayNow(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentResponse(payment))
	}
}

// PaymentPayForMe creates a shareable payment link for someone else to settle
// the order.
func PaymentPayForMe(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
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

		payment, err := svc.CreatePayForMeLink(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentResponse(payment))
	}
}

// PaymentSharedFetch shows a shared payment link to the payer, order summary
// included.
func PaymentSharedFetch(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		token := strings.TrimSpace(chi.URLParam(r, "token"))
		shared, err := svc.GetShared(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sharedPaymentResponse{
			Payment: newPaymentResponse(shared.Payment),
			Order:   newOrderResponse(shared.Order),
		})
	}
}

// PaymentSharedPay initializes the gateway transaction for the payer who
// opened a shared link.
func PaymentSharedPay(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		token := strings.TrimSpace(chi.URLParam(r, "token"))

		var payload sharedPayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.PayShared(r.Context(), token, payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPaymentResponse(payment))
	}
}

// PaymentVerify reconciles a gateway reference after the payer returns from
// the redirect. Settled transactions mark both the payment and the order paid.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		reference := strings.TrimSpace(chi.URLParam(r, "reference"))
		payment, err := svc.Verify(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPaymentResponse(payment))
	}
}

type sharedPayRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sharedPaymentResponse struct {
	Payment paymentResponse `json:"payment"`
	Order   orderResponse   `json:"order"`
}

type paymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	Reference        string          `json:"reference"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	AuthorizationURL *string         `json:"authorization_url,omitempty"`
	ShareToken       *string         `json:"share_token,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newPaymentResponse(record *models.Payment) paymentResponse {
	return paymentResponse{
		ID:               record.ID,
		OrderID:          record.OrderID,
		Reference:        record.Reference,
		Method:           string(record.Method),
		Status:           string(record.Status),
		Amount:           record.Amount,
		AuthorizationURL: record.AuthorizationURL,
		ShareToken:       record.ShareToken,
		PaidAt:           record.PaidAt,
		CreatedAt:        record.CreatedAt,
	}
}
