// Package calendar provides the HTTP client for OpenTimestamps calendar
// servers.
//
// A calendar accepts a digest (POST /digest) and later serves the proof
// fragment leading from that digest to its scheduled blockchain
// attestations (GET /timestamp/<hex>). Response bodies are bare tree
// fragments in the proof wire format.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/javanhut/ots-go/internal/codec"
	"github.com/javanhut/ots-go/internal/ots"
	"github.com/javanhut/ots-go/internal/wire"
)

const (
	// AcceptHeader is the media type calendars serve fragments under.
	AcceptHeader = "application/vnd.opentimestamps.v1"

	// DefaultTimeout bounds a single calendar request.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps calendar response bodies.
	maxResponseSize = 1 << 20

	userAgent = "ots-go/0.1.0"
)

// DefaultCalendars is the standard calendar server list.
var DefaultCalendars = []string{
	"https://alice.btc.calendar.opentimestamps.org",
	"https://bob.btc.calendar.opentimestamps.org",
	"https://finney.calendar.eternitywall.com",
	"https://btc.calendar.catallaxy.com",
}

// Client talks to calendar servers.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client with the default timeout.
func NewClient() *Client {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout creates a Client with a custom request timeout.
func NewClientWithTimeout(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Timestamp fetches the proof fragment for message from the calendar:
// GET {calendar}/timestamp/{hex(message)}. The fragment's paths begin
// from message.
//
// Calendar URLs reach this client either from parsed pending leaves or
// from user input, both validated upstream with ots.ParseCalendarURL.
func (c *Client) Timestamp(ctx context.Context, calendarURL string, message []byte) (*ots.Tree, error) {
	body, err := c.fetch(ctx, http.MethodGet, calendarURL+"/timestamp/"+wire.ToHex(message), nil)
	if err != nil {
		return nil, err
	}
	return codec.ReadFragment(body)
}

// Submit posts digest to the calendar: POST {calendar}/digest. The
// returned fragment's paths begin from digest.
func (c *Client) Submit(ctx context.Context, calendarURL string, digest []byte) (*ots.Tree, error) {
	body, err := c.fetch(ctx, http.MethodPost, calendarURL+"/digest", digest)
	if err != nil {
		return nil, err
	}
	return codec.ReadFragment(body)
}

// fetch issues one request and returns the size-capped body.
func (c *Client) fetch(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error retrieving response body from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("calendar returned %d for %s: %s", resp.StatusCode, url, snippet)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error retrieving response body from %s: %w", url, err)
	}
	return data, nil
}
