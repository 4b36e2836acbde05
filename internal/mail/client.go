// Package mail sends transactional and campaign emails through the outbound
// email function. Transport itself is the function's business; this package
// only builds and posts messages.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one email addressed to one recipient.
type Message struct {
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	FromName  string            `json:"from_name,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError is returned when the email function rejects a message.
type DeliveryError struct {
	Recipient  string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("delivery to %s failed with status %d", e.Recipient, e.StatusCode)
	}
	return fmt.Sprintf("delivery to %s failed with status %d: %s", e.Recipient, e.StatusCode, e.Body)
}

// Client posts messages to the email function over HTTP.
type Client struct {
	url      string
	key      string
	fromName string
	http     *http.Client
}

// NewClient returns a client for the function at url, authenticated with key.
func NewClient(url, key, fromName string, timeout time.Duration) *Client {
	return &Client{
		url:      url,
		key:      key,
		fromName: fromName,
		http:     &http.Client{Timeout: timeout},
	}
}

// Send posts one message. Any non-2xx answer is a *DeliveryError.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.FromName == "" {
		msg.FromName = c.fromName
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email function: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DeliveryError{
			Recipient:  msg.To,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(body)),
		}
	}
	return nil
}
