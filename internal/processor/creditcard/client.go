package creditcard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/payment-gateway/internal/pgcipher"
	"github.com/frahmantamala/payment-gateway/internal/processor"
)

const approvalPath = "/api/v1/pay/credit-card"

// approvedAt has no zone designator on the wire
const approvedAtLayout = "2006-01-02T15:04:05"

type Config struct {
	PartnerID int64
	BaseURL   string
	APIKey    string
}

// Client is the credit-card partner integration. It encrypts the approval
// payload with the shared Codec, performs one synchronous POST per call and
// classifies the response. The http.Client is shared across in-flight
// requests and must stay safe for concurrent use.
type Client struct {
	cfg    Config
	codec  pgcipher.Codec
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, codec pgcipher.Codec, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:    cfg,
		codec:  codec,
		http:   httpClient,
		logger: logger,
	}
}

func (c *Client) Supports(partnerID int64) bool {
	return partnerID == c.cfg.PartnerID
}

// plainPayload is the object encrypted into the "enc" envelope. Amount is
// truncated to an integer on the wire.
type plainPayload struct {
	CardNumber string `json:"cardNumber"`
	BirthDate  string `json:"birthDate"`
	Expiry     string `json:"expiry"`
	Password   string `json:"password"`
	Amount     int64  `json:"amount"`
}

type approvalResponse struct {
	ApprovalCode    string `json:"approvalCode"`
	ApprovedAt      string `json:"approvedAt"`
	MaskedCardLast4 string `json:"maskedCardLast4"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
}

type declineResponse struct {
	Code        int     `json:"code"`
	ErrorCode   string  `json:"errorCode"`
	Message     string  `json:"message"`
	ReferenceID *string `json:"referenceId"`
}

// Approve performs a single approval attempt. No retries: a declined card
// stays declined and auth failures need a configuration fix.
func (c *Client) Approve(ctx context.Context, req *processor.ApprovalRequest) (*processor.ApprovalResult, error) {
	payload := plainPayload{
		CardNumber: req.CardDigits(),
		BirthDate:  req.BirthDate,
		Expiry:     req.Expiry,
		Password:   req.PasswordPrefix,
		Amount:     req.Amount.IntPart(),
	}

	plain, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal approval payload: %w", err)
	}

	enc, err := c.codec.Encrypt(string(plain))
	if err != nil {
		c.logger.Error("failed to encrypt approval payload", "error", err, "partner_id", req.PartnerID)
		return nil, fmt.Errorf("encrypt approval payload: %w", err)
	}

	body, err := json.Marshal(map[string]string{"enc": enc})
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+approvalPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create approval request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("API-KEY", c.cfg.APIKey)

	c.logger.Info("sending approval request",
		"partner_id", req.PartnerID,
		"card_bin", req.BIN(),
		"card_last4", req.Last4(),
		"amount", req.Amount.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("approval request failed", "error", err, "partner_id", req.PartnerID)
		return nil, fmt.Errorf("approval request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read approval response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return c.classifyApproved(raw)
	case http.StatusUnauthorized:
		return nil, c.classifyUnauthorized(raw)
	case http.StatusUnprocessableEntity:
		return nil, c.classifyDeclined(raw)
	default:
		c.logger.Error("unexpected pg response",
			"status", resp.StatusCode,
			"partner_id", req.PartnerID,
			"body", string(raw))
		return nil, &processor.ApprovalError{
			Code:      resp.StatusCode,
			ErrorCode: "UNKNOWN",
			Message:   fmt.Sprintf("Unexpected PG response: %s", string(raw)),
		}
	}
}

func (c *Client) classifyApproved(raw []byte) (*processor.ApprovalResult, error) {
	var parsed approvalResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &processor.ApprovalError{
			Code:      http.StatusOK,
			ErrorCode: "UNKNOWN",
			Message:   fmt.Sprintf("Unexpected PG response: %s", string(raw)),
		}
	}

	approvedAt, err := time.Parse(approvedAtLayout, parsed.ApprovedAt)
	if err != nil {
		return nil, &processor.ApprovalError{
			Code:      http.StatusOK,
			ErrorCode: "UNKNOWN",
			Message:   fmt.Sprintf("Unexpected PG response: %s", string(raw)),
		}
	}

	c.logger.Info("approval succeeded",
		"approval_code", parsed.ApprovalCode,
		"approved_at", parsed.ApprovedAt,
		"masked_last4", parsed.MaskedCardLast4)

	return &processor.ApprovalResult{
		ApprovalCode: parsed.ApprovalCode,
		ApprovedAt:   approvedAt,
		Status:       processor.StatusApproved,
	}, nil
}

// classifyUnauthorized never lets a parse failure mask the auth failure: an
// unreadable body still yields an AuthError with the raw body embedded.
func (c *Client) classifyUnauthorized(raw []byte) error {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &processor.AuthError{
			Kind:    processor.AuthUnregisteredAPIKey,
			Message: fmt.Sprintf("PG authentication failed: %s", string(raw)),
		}
	}

	message := "Authentication failed"
	if m, ok := parsed["message"].(string); ok && m != "" {
		message = m
	}

	kind := processor.ClassifyAuthMessage(message)
	c.logger.Warn("pg rejected credentials", "kind", string(kind), "message", message)

	return &processor.AuthError{Kind: kind, Message: message}
}

func (c *Client) classifyDeclined(raw []byte) error {
	var parsed declineResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		parsed = declineResponse{
			Code:      http.StatusUnprocessableEntity,
			ErrorCode: "UNKNOWN",
			Message:   string(raw),
		}
	}
	if parsed.Code == 0 {
		parsed.Code = http.StatusUnprocessableEntity
	}

	errorCode := parsed.ErrorCode
	message := parsed.Message
	if numeric, err := strconv.Atoi(parsed.ErrorCode); err == nil {
		if reason, ok := processor.LookupDecline(numeric); ok {
			errorCode = reason.Name
			message = reason.Description
		}
	}

	c.logger.Warn("pg declined transaction",
		"code", parsed.Code,
		"error_code", errorCode,
		"message", message)

	return &processor.ApprovalError{
		Code:        parsed.Code,
		ErrorCode:   errorCode,
		Message:     message,
		ReferenceID: parsed.ReferenceID,
	}
}
