package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/config"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client wraps the Paystack REST API with centralized auth, logging, and error mapping.
type Client struct {
	http        *http.Client
	baseURL     string
	secretKey   string
	callbackURL string
	logger      *logger.Logger
}

// InitializeParams describes a transaction initialization request. Amount is in naira;
// the client converts to kobo on the wire.
type InitializeParams struct {
	Email     string
	Amount    decimal.Decimal
	Reference string
}

// Transaction is the subset of the Paystack transaction payload the storefront uses.
type Transaction struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
	Status           string
	Amount           decimal.Decimal
	PaidAt           *time.Time
}

// NewClient initializes the Paystack wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		secretKey:   secretKey,
		callbackURL: strings.TrimSpace(cfg.CallbackURL),
		logger:      logg,
	}

	logg.Info(ctx, "paystack client initialized")
	return c, nil
}

// InitializeTransaction creates a pending transaction and returns the hosted checkout URL.
func (c *Client) InitializeTransaction(ctx context.Context, params InitializeParams) (*Transaction, error) {
	body := map[string]any{
		"email":     params.Email,
		"amount":    toKobo(params.Amount),
		"reference": params.Reference,
	}
	if c.callbackURL != "" {
		body["callback_url"] = c.callbackURL
	}

	c.log(ctx, "request", "initialize_transaction", map[string]any{
		"reference": params.Reference,
		"amount":    params.Amount.StringFixed(2),
	})

	var payload struct {
		Data struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &payload); err != nil {
		c.log(ctx, "error", "initialize_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	txn := &Transaction{
		Reference:        payload.Data.Reference,
		AuthorizationURL: payload.Data.AuthorizationURL,
		AccessCode:       payload.Data.AccessCode,
		Status:           "pending",
		Amount:           params.Amount,
	}
	c.log(ctx, "response", "initialize_transaction", map[string]any{"reference": txn.Reference})
	return txn, nil
}

// VerifyTransaction fetches the settlement status for a transaction reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	c.log(ctx, "request", "verify_transaction", map[string]any{"reference": reference})

	var payload struct {
		Data struct {
			Reference string     `json:"reference"`
			Status    string     `json:"status"`
			Amount    int64      `json:"amount"`
			PaidAt    *time.Time `json:"paid_at"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &payload); err != nil {
		c.log(ctx, "error", "verify_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	txn := &Transaction{
		Reference: payload.Data.Reference,
		Status:    payload.Data.Status,
		Amount:    fromKobo(payload.Data.Amount),
		PaidAt:    payload.Data.PaidAt,
	}
	c.log(ctx, "response", "verify_transaction", map[string]any{
		"reference": txn.Reference,
		"status":    txn.Status,
	})
	return txn, nil
}

// Settled reports whether a verified transaction was charged successfully.
func (t *Transaction) Settled() bool {
	return t != nil && t.Status == "success"
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "paystack request encode failed")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "paystack request build failed")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack response read failed")
	}

	if resp.StatusCode >= 400 {
		return c.mapAPIError(resp.StatusCode, raw)
	}

	var envelope struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack response decode failed")
	}
	if !envelope.Status {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paystack rejected request: %s", envelope.Message))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack response decode failed")
		}
	}
	return nil
}

func (c *Client) mapAPIError(status int, raw []byte) error {
	message := "paystack request failed"
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		message = fmt.Sprintf("paystack request failed: %s", envelope.Message)
	}
	return pkgerrors.New(domainCodeForStatus(status), message)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paystack %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paystack %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "email", "phone", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func toKobo(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromKobo(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}
