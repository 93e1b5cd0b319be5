// Package apiclient talks to the chequebook REST API and implements
// ledger.Remote.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"

	"github.com/iho/chequebook/internal/adapter/http/dto"
	"github.com/iho/chequebook/internal/domain"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Client is a REST client for the cheque API.
type Client struct {
	baseURL string
	http    *http.Client

	createRetries uint64
	retryInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithCreateRetries sets how often a create is resent after the API was
// unreachable, waiting interval (growing exponentially) between attempts.
func WithCreateRetries(n uint64, interval time.Duration) Option {
	return func(c *Client) {
		c.createRetries = n
		c.retryInterval = interval
	}
}

// New creates a client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: timeout},
		createRetries: 2,
		retryInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every cheque of kind.
func (c *Client) List(ctx context.Context, kind domain.Kind) ([]*domain.Cheque, error) {
	var resp []*dto.ChequeResponse
	if err := c.do(ctx, http.MethodGet, "/api/"+string(kind), nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*domain.Cheque, len(resp))
	for i, r := range resp {
		out[i] = r.ToDomain(kind)
	}
	return out, nil
}

// Create records a new cheque. One idempotency key is minted per call and
// reused for every resend, so a create whose response was lost is replayed
// by the API instead of being recorded twice.
func (c *Client) Create(ctx context.Context, kind domain.Kind, draft domain.Draft) (*domain.Cheque, error) {
	header := http.Header{}
	header.Set(idempotencyKeyHeader, ulid.Make().String())
	body := dto.ChequeRequestFromDraft(kind, draft)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxElapsedTime = 0

	var resp dto.ChequeResponse
	err := backoff.Retry(func() error {
		err := c.do(ctx, http.MethodPost, "/api/"+string(kind), header, body, &resp)
		if err != nil && !errors.Is(err, domain.ErrCollaboratorUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, c.createRetries), ctx))
	if err != nil {
		return nil, err
	}
	return resp.ToDomain(kind), nil
}

// Transition completes an outgoing cheque or deposits an incoming one.
func (c *Client) Transition(ctx context.Context, kind domain.Kind, id string) (*domain.Cheque, error) {
	var resp dto.ChequeResponse
	if err := c.do(ctx, http.MethodPost, "/api/"+string(kind)+"/"+id+"/"+action(kind), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(kind), nil
}

// Delete removes a cheque.
func (c *Client) Delete(ctx context.Context, kind domain.Kind, id string) error {
	var resp dto.OKResponse
	return c.do(ctx, http.MethodPost, "/api/"+string(kind)+"/"+id+"/delete", nil, nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError maps an API error response back to a domain error.
func decodeError(res *http.Response) error {
	var body dto.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		if body.Error == "invalid id" {
			return fmt.Errorf("%w: %s", domain.ErrInvalidID, msg)
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case http.StatusNotFound:
		return domain.ErrChequeNotFound
	case http.StatusConflict:
		return domain.ErrInvalidState
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", domain.ErrCollaboratorUnavailable, res.StatusCode)
	default:
		return fmt.Errorf("api error: status %d: %s", res.StatusCode, msg)
	}
}

func action(kind domain.Kind) string {
	if kind == domain.KindIncoming {
		return "deposit"
	}
	return "complete"
}
