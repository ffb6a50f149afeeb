package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stocktake/internal/config"
)

// Client sends plain-text messages over the WhatsApp Cloud API: replies to
// staff commands and digests to the store manager.
type Client struct {
	httpClient    *resty.Client
	phoneNumberID string
	recipient     string
}

// NewClient builds a client from the WhatsApp settings.
func NewClient(cfg config.WhatsAppConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
		recipient:     cfg.ManagerID,
	}
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Notify sends body to the configured manager and returns the WhatsApp message id.
func (c *Client) Notify(ctx context.Context, body string) (string, error) {
	return c.SendText(ctx, c.recipient, body)
}

// SendText sends body as a text message to the given WhatsApp id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", errors.New("recipient must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("message body must not be empty")
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]any{
			"body":        body,
			"preview_url": false,
		},
	}

	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
