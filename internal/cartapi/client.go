// Package cartapi is the HTTP client for the Cart API consumed by the
// client-side store: GET /api/cart reads the user's server cart, POST
// /api/cart replaces it wholesale.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"domcart/internal/domain"
)

const cartPath = "/api/cart"

// Client talks to one Cart API base URL. Requests carry the caller's bearer
// token and run under the caller's context with no internal deadline or
// retry; the store treats every failure as non-fatal.
type Client struct {
	baseURL string
	httpc   *http.Client
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, e.g. for tests or a
// transport with custom TLS settings.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		tracer:  otel.Tracer("domcart/cartapi"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FetchCart returns the server-side cart for the token's user. A non-2xx
// response means "no data" and returns ok=false without an error; only
// transport and decode failures are errors.
func (c *Client) FetchCart(ctx context.Context, token string) ([]domain.CartItem, bool, error) {
	ctx, span := c.tracer.Start(ctx, "cartapi.FetchCart")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+cartPath, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building cart fetch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, false, fmt.Errorf("fetching cart: %w", err)
	}
	defer drainAndClose(resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, nil
	}

	var envelope domain.CartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		span.SetStatus(codes.Error, "decode failed")
		span.RecordError(err)
		return nil, false, fmt.Errorf("decoding cart response: %w", err)
	}
	span.SetAttributes(attribute.Int("cart.items", len(envelope.Cart)))
	return envelope.Cart, true, nil
}

// ReplaceCart sends the entire cart, replacing the server's stored copy. The
// acknowledgement body is not consumed.
func (c *Client) ReplaceCart(ctx context.Context, token string, items []domain.CartItem) error {
	ctx, span := c.tracer.Start(ctx, "cartapi.ReplaceCart",
		trace.WithAttributes(attribute.Int("cart.items", len(items))))
	defer span.End()

	if items == nil {
		items = []domain.CartItem{}
	}
	body, err := json.Marshal(domain.CartEnvelope{Cart: items})
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+cartPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building cart replace request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "replace failed")
		span.RecordError(err)
		return fmt.Errorf("replacing cart: %w", err)
	}
	defer drainAndClose(resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("replacing cart: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
