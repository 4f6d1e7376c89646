// Package graphql is the request layer between the dashboard and the backend
// GraphQL API.
//
// Every operation goes through the same link chain: an auth transport that
// attaches the bearer token from the credential store, then a plain HTTP
// transport. The client performs no retries and no caching; transport and
// GraphQL errors are mapped onto the domain error taxonomy and passed to
// callers unchanged beyond that.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/metrics"
)

// DefaultEndpoint is the local development fallback for the backend API.
const DefaultEndpoint = "http://localhost:8081/graphql"

// Client executes GraphQL operations against the backend.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every backend request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a Client for the given endpoint. An empty endpoint falls
// back to the local development default.
func NewClient(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http: &http.Client{
			Transport: newAuthTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the wire shape of a GraphQL POST body.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the wire shape of a GraphQL response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []responseError `json:"errors"`
}

// do executes a single operation and decodes the data envelope into out.
// The operation name is used for logging and metrics only; the backend sees
// the full query document.
func (c *Client) do(ctx context.Context, op string, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, op, query, vars, out)
	metrics.ObserveGraphQLOperation(op, domain.ErrorCode(err), time.Since(start))
	return err
}

func (c *Client) doOnce(ctx context.Context, op string, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return domain.Internal(err, "graphql."+op, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Internal(err, "graphql."+op, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Unavailable(err, "graphql."+op, "backend API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return domain.Unauthorized("graphql."+op, "backend rejected credentials")
		}
		return domain.Errorf(domain.EUNAVAILABLE, "graphql."+op, "backend returned status %d", resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Wrap(err, domain.EUNAVAILABLE, "graphql."+op, "malformed backend response")
	}

	if len(envelope.Errors) > 0 {
		gqlErr := envelope.Errors[0].toDomain("graphql." + op)
		c.logger.Debug("graphql operation failed",
			"operation", op,
			"code", domain.ErrorCode(gqlErr),
			"message", envelope.Errors[0].Message,
		)
		return gqlErr
	}

	if out != nil {
		if envelope.Data == nil {
			return domain.Errorf(domain.EUNAVAILABLE, "graphql."+op, "backend returned no data")
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return domain.Wrap(err, domain.EINTERNAL, "graphql."+op, fmt.Sprintf("failed to decode %s result", op))
		}
	}

	return nil
}
