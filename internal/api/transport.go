// Package api is the HTTP boundary to the code-challenge service. Transport
// issues raw requests; the wire types and route helpers describe the
// endpoints the workflow uses.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thruflo/nodewars/internal/logging"
)

// DefaultBaseURL is the service host plus the code-challenges base path.
const DefaultBaseURL = "https://www.codewars.com/api/v1/code-challenges"

// DefaultTimeout bounds a single HTTP exchange. Polling is not bounded by it.
const DefaultTimeout = 30 * time.Second

// Transport issues one request and returns the raw response body. POST
// bodies may be supplied as several chunks, sent in order.
type Transport interface {
	Do(ctx context.Context, method, route string, body ...string) ([]byte, error)
}

// HTTPTransport implements Transport over net/http with a static API key.
type HTTPTransport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logging.Logger
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithBaseURL overrides the service base URL.
func WithBaseURL(baseURL string) TransportOption {
	return func(t *HTTPTransport) {
		if baseURL != "" {
			t.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.httpClient = client
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logging.Logger) TransportOption {
	return func(t *HTTPTransport) {
		t.log = l
	}
}

// NewHTTPTransport creates a transport authenticating with apiKey.
func NewHTTPTransport(apiKey string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logging.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("component", "transport")
	return t
}

// Do sends method to baseURL+route. Body chunks are only sent for POST.
// Connection failures and HTTP error statuses are returned as *TransportError.
func (t *HTTPTransport) Do(ctx context.Context, method, route string, body ...string) ([]byte, error) {
	var reader io.Reader
	if method == http.MethodPost && len(body) > 0 {
		readers := make([]io.Reader, len(body))
		for i, chunk := range body {
			readers[i] = strings.NewReader(chunk)
		}
		reader = io.MultiReader(readers...)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+route, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Route: route, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", t.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	log := t.log.WithFields(map[string]interface{}{
		"method":     method,
		"route":      route,
		"request_id": requestID,
	})
	start := time.Now()
	log.Debug("request")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, &TransportError{Method: method, Route: route, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Route: route, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.Debug("response", "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &TransportError{
			Method:     method,
			Route:      route,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}
