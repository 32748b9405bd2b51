package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/TechBursterOrg/homehero-sub003/internal/domain/gateway"
)

const defaultBaseURL = "https://api.paystack.co"

// Client is the Paystack implementation of the PaymentGateway interface.
type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a new Paystack gateway client.
func NewClient(secretKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Name returns the gateway name
func (c *Client) Name() string {
	return "paystack"
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// CreateSession initializes a Paystack transaction and returns the hosted
// checkout redirect target.
// POST /transaction/initialize
func (c *Client) CreateSession(ctx context.Context, req *gateway.CreateSessionRequest) (*gateway.Session, error) {
	body := initializeRequest{
		Email:       req.CustomerEmail,
		Amount:      req.Amount,
		Reference:   req.Reference,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
	}

	var result initializeResponse
	if err := c.post(ctx, "/transaction/initialize", body, &result); err != nil {
		return nil, err
	}

	if !result.Status {
		return nil, &gateway.Error{
			Code:    "INITIALIZE_REJECTED",
			Message: result.Message,
		}
	}

	c.logger.Info("Paystack transaction initialized",
		zap.String("reference", result.Data.Reference),
		zap.Int64("amount", req.Amount))

	return &gateway.Session{
		SessionID:   result.Data.AccessCode,
		Reference:   result.Data.Reference,
		RedirectURL: result.Data.AuthorizationURL,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string     `json:"status"`
		Reference string     `json:"reference"`
		Amount    int64      `json:"amount"`
		PaidAt    *time.Time `json:"paid_at"`
	} `json:"data"`
}

// VerifySession fetches the authoritative transaction status.
// GET /transaction/verify/{reference}
func (c *Client) VerifySession(ctx context.Context, reference string) (*gateway.SessionStatus, error) {
	var result verifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &result); err != nil {
		return nil, err
	}

	if !result.Status {
		return nil, &gateway.Error{
			Code:    "VERIFY_REJECTED",
			Message: result.Message,
		}
	}

	return &gateway.SessionStatus{
		Reference: result.Data.Reference,
		Status:    normalizeStatus(result.Data.Status),
		Amount:    result.Data.Amount,
		PaidAt:    result.Data.PaidAt,
	}, nil
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Status          string `json:"status"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// ParseWebhook validates the x-paystack-signature HMAC and normalizes the
// event payload.
func (c *Client) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, &gateway.Error{
			Code:    "INVALID_SIGNATURE",
			Message: "webhook signature verification failed",
		}
	}

	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, &gateway.Error{
			Code:    "PARSE_ERROR",
			Message: "failed to parse webhook payload",
			Details: err.Error(),
		}
	}

	normalized := &gateway.WebhookEvent{
		EventType: event.Event,
		Reference: event.Data.Reference,
		Amount:    event.Data.Amount,
	}

	switch event.Event {
	case "charge.success":
		normalized.Status = gateway.StatusSuccess
	case "charge.failed":
		normalized.Status = gateway.StatusFailed
		normalized.FailureCode = event.Data.Status
		normalized.FailureMessage = event.Data.GatewayResponse
	default:
		normalized.Status = normalizeStatus(event.Data.Status)
	}

	return normalized, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return &gateway.Error{
			Code:    "MARSHAL_ERROR",
			Message: "failed to prepare request",
			Details: err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return &gateway.Error{
			Code:    "REQUEST_ERROR",
			Message: "failed to create request",
			Details: err.Error(),
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &gateway.Error{
			Code:    "REQUEST_ERROR",
			Message: "failed to create request",
			Details: err.Error(),
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Paystack API request failed",
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return &gateway.Error{
			Code:    "API_ERROR",
			Message: "Paystack API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &gateway.Error{
			Code:    "RESPONSE_ERROR",
			Message: "failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &errResp)

		c.logger.Error("Paystack API returned an error",
			zap.String("url", req.URL.String()),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", errResp.Message))

		return &gateway.Error{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: errResp.Message,
			Details: string(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &gateway.Error{
			Code:    "PARSE_ERROR",
			Message: "failed to parse response",
			Details: err.Error(),
		}
	}

	return nil
}

func normalizeStatus(paystackStatus string) gateway.Status {
	switch paystackStatus {
	case "success":
		return gateway.StatusSuccess
	case "failed", "abandoned", "reversed":
		return gateway.StatusFailed
	default:
		return gateway.StatusPending
	}
}
