package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds each outbound webhook call. The ancestor relay had
// no timeout at all; a hung sink must not hold a request open forever.
const DefaultTimeout = 10 * time.Second

// DeliveryError is a sink rejection that survived the fallback attempt (or
// did not qualify for one). It carries the sink's final status and body.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("discord webhook failed: %d %s", e.Status, e.Body)
}

// Client delivers rendered messages to Discord webhook sinks.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client with the given per-call timeout; zero means
// DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Send posts the rich body to the sink. A 400 response means the sink
// rejected the components-v2 shape; the legacy body is then sent exactly
// once to the sink with the rich-only query parameters stripped. Any other
// failure, or a failed fallback, surfaces as a *DeliveryError. The rich body
// is never retried.
func (c *Client) Send(ctx context.Context, sink string, rich *RichMessage, legacy *LegacyMessage) error {
	status, body, err := c.post(ctx, RichURL(sink), rich)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	if status != http.StatusBadRequest {
		return &DeliveryError{Status: status, Body: body}
	}

	status, body, err = c.post(ctx, LegacyURL(sink), legacy)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return &DeliveryError{Status: status, Body: body}
}

func (c *Client) post(ctx context.Context, sink string, msg any) (int, string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, "", fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sink, bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}

// RichURL appends the query parameters Discord needs to accept a
// components-v2 body.
func RichURL(sink string) string {
	u, err := url.Parse(sink)
	if err != nil {
		return sink
	}
	q := u.Query()
	q.Set("wait", "true")
	q.Set("with_components", "true")
	u.RawQuery = q.Encode()
	return u.String()
}

// LegacyURL strips the query string so the fallback post carries none of
// the rich-only parameters.
func LegacyURL(sink string) string {
	u, err := url.Parse(sink)
	if err != nil {
		return sink
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
