package mattermost

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds one relay POST when the caller sets none.
const DefaultTimeout = 30 * time.Second

// Relay delivers a built document to Mattermost.
type Relay interface {
	Send(ctx context.Context, doc *Document) error
}

// RelayError reports a failed delivery. Either Err is set (transport
// failure) or Status/Body describe the non-2xx response.
type RelayError struct {
	Status int
	Body   string
	Err    error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Mattermost webhook request failed: %v", e.Err)
	}
	return fmt.Sprintf("Mattermost webhook failed (%d): %s", e.Status, e.Body)
}

func (e *RelayError) Unwrap() error { return e.Err }

// Client posts documents to a single incoming-webhook URL. It never retries.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a Client for webhookURL. A zero timeout means
// DefaultTimeout.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		url: webhookURL,
	}
}

// URL returns the webhook the client posts to.
func (c *Client) URL() string { return c.url }

// Send POSTs doc as JSON and waits for the response.
func (c *Client) Send(ctx context.Context, doc *Document) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(doc).
		Post(c.url)
	if err != nil {
		return &RelayError{Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &RelayError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
