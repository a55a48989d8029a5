// Package whatsapp sends outbound messages through a gowa-compatible
// gateway. This service only messages the sales team (agent alerts);
// customer-facing delivery belongs to the messaging layer, not here.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wasales_backend/platform/config"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/phone"
)

type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	http     *http.Client
	log      *logger.Logger
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// sendMessageResponse is the gowa result envelope. Non-SUCCESS codes can
// arrive with HTTP 200, so the body is checked as well as the status.
type sendMessageResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient builds the gateway client, or nil when no gateway URL is
// configured; callers treat a nil client as alerting disabled.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:   cfg.GetWhatsAppKey(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// SendAgentAlert notifies a sales agent that a conversation needs attention:
// its current funnel stage, score, and the recommended next step.
func (c *Client) SendAgentAlert(ctx context.Context, agentPhone, conversationID, stage string, score int, action string) error {
	message := fmt.Sprintf(
		"Conversation %s is now %s (score %d). Suggested next step: %s",
		conversationID, stage, score, action,
	)
	return c.SendMessage(ctx, agentPhone, message)
}

// SendMessage sends one text message. The phone number is normalized to
// E.164 without the leading plus, the format gowa expects.
func (c *Client) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}

	normalized := strings.TrimPrefix(phone.NormalizeE164(phoneNumber), "+")

	body, err := json.Marshal(sendMessageRequest{
		Phone:   normalized,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send/message", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", basicAuthHeader(c.apiKey))
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		result = sendMessageResponse{}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, result.Message)
	}
	if result.Code != "" && !strings.EqualFold(result.Code, "SUCCESS") {
		return fmt.Errorf("whatsapp gateway rejected message: %s %s", result.Code, result.Message)
	}

	c.log.Info("whatsapp message sent", "phone", normalized)
	return nil
}

// basicAuthHeader wraps a configured "user:password" key as Basic auth,
// passing through keys that already carry the scheme.
func basicAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey))
}
