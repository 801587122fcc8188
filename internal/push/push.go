// Package push sends batched notifications to the Expo push gateway.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"splitter/internal/core"
)

// DefaultGatewayURL is the Expo push endpoint.
const DefaultGatewayURL = "https://exp.host/--/api/v2/push/send"

// DefaultTitle is used when the caller does not override the title.
const DefaultTitle = "💸 Expense Splitter"

// DefaultTimeout bounds the outbound gateway call so a stalled gateway
// cannot hang request handling.
const DefaultTimeout = 10 * time.Second

// Message is one notification record, one per recipient token.
type Message struct {
	To    string `json:"to"`
	Sound string `json:"sound"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Receipt carries the gateway's response payload verbatim. When the
// recipient set was empty no network call is made and NoRecipients is
// set with a sentinel payload instead of a gateway response.
type Receipt struct {
	NoRecipients bool
	Body         json.RawMessage
}

var noRecipientsBody = json.RawMessage(`{"status": "no tokens"}`)

type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a dispatcher for the given gateway URL. A zero
// timeout falls back to DefaultTimeout.
func NewClient(gatewayURL string, timeout time.Duration) *Client {
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        gatewayURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Dispatch batches one message per token into a single gateway request
// and returns the response payload unmodified. Failures are not retried.
func (c *Client) Dispatch(ctx context.Context, tokens []core.Token, title, body string) (Receipt, error) {
	if len(tokens) == 0 {
		return Receipt{NoRecipients: true, Body: noRecipientsBody}, nil
	}
	if title == "" {
		title = DefaultTitle
	}

	messages := make([]Message, len(tokens))
	for i, t := range tokens {
		messages[i] = Message{
			To:    string(t),
			Sound: "default",
			Title: title,
			Body:  body,
		}
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("post to gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, fmt.Errorf("read gateway response: %w", err)
	}
	if !json.Valid(raw) {
		return Receipt{}, fmt.Errorf("gateway returned non-JSON response (status %d)", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Push batch dispatched",
		"recipients", len(tokens),
		"status", resp.StatusCode)

	return Receipt{Body: json.RawMessage(raw)}, nil
}
