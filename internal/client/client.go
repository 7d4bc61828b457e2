// Package client talks to the graph platform REST API.
//
// Every call returns an *errors.AppError on failure: NETWORK when no response
// was received, SERVER_REJECTION (or UNAUTHORIZED for 401) with the server's
// detail message, and UNAVAILABLE while the circuit breaker is open.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"graphlearn/internal/config"
	"graphlearn/internal/observability"
	pkgerrors "graphlearn/pkg/errors"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"

	// unknownErrorDetail is shown when a rejection body is not JSON.
	unknownErrorDetail = "An unknown error occurred."
)

var errServerFailure = errors.New("server failure")

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) string
}

// RequestClient performs authenticated JSON requests against the API base URL.
type RequestClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	metrics    *observability.Collector
	logger     *zap.Logger
}

// Option customizes a RequestClient.
type Option func(*RequestClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(rc *RequestClient) { rc.httpClient = c }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(rc *RequestClient) { rc.tracer = t }
}

// WithMetrics sets the collector that records request metrics.
func WithMetrics(m *observability.Collector) Option {
	return func(rc *RequestClient) { rc.metrics = m }
}

// NewRequestClient creates a client for the configured API.
func NewRequestClient(api config.API, cb config.CircuitBreaker, tokens TokenSource, logger *zap.Logger, opts ...Option) *RequestClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := &RequestClient{
		baseURL:    strings.TrimRight(api.BaseURL, "/"),
		userAgent:  api.UserAgent,
		httpClient: &http.Client{Timeout: api.Timeout},
		tokens:     tokens,
		tracer:     otel.Tracer(observability.TracerName),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.breaker = rc.newBreaker(cb)
	return rc
}

func (c *RequestClient) newBreaker(cfg config.CircuitBreaker) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
		IsSuccessful: func(err error) bool {
			// Cancelled requests say nothing about the server's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Call sends a JSON request. body is encoded when non-nil; out is decoded
// when non-nil and the response carries a body. A 204 or empty response is a
// success with nothing decoded.
func (c *RequestClient) Call(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.NewInternalError("failed to encode request body").WithCause(err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, endpoint, "application/json", reader, out)
}

// PostForm sends a form-encoded POST.
func (c *RequestClient) PostForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), out)
}

type response struct {
	status int
	body   []byte
}

func (c *RequestClient) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out interface{}) error {
	operation := OperationName(method, endpoint)
	requestID := uuid.New().String()
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "API "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", endpoint),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return pkgerrors.NewInternalError("failed to build request").WithCause(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			return r, errServerFailure
		}
		return r, nil
	})

	var resp *response
	if r, ok := result.(*response); ok {
		resp = r
	}

	status := 0
	if resp != nil {
		status = resp.status
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	c.metrics.RecordAPIRequest(method, operation, status, time.Since(start))

	appErr := c.classify(err, resp)
	if appErr == nil && out != nil && len(bytes.TrimSpace(resp.body)) > 0 && resp.status != http.StatusNoContent {
		if decodeErr := json.Unmarshal(resp.body, out); decodeErr != nil {
			appErr = pkgerrors.NewInternalError("invalid response body").WithCause(decodeErr)
		}
	}

	if appErr != nil {
		span.RecordError(appErr)
		span.SetStatus(codes.Error, appErr.Message)
		c.logger.Warn("API request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(appErr))
		return appErr
	}

	c.logger.Debug("API request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (c *RequestClient) classify(err error, resp *response) *pkgerrors.AppError {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.NewUnavailableError("graph API")
	case resp == nil && err != nil:
		return pkgerrors.NewNetworkError("request failed", err)
	case resp == nil:
		return pkgerrors.NewNetworkError("request failed", errors.New("no response"))
	case resp.status < 200 || resp.status >= 300:
		return pkgerrors.NewServerRejection(resp.status, rejectionDetail(resp.body))
	}
	return nil
}

// rejectionDetail extracts the server's message from an error body. The API
// returns either {"detail": "text"} or a list of field errors.
func rejectionDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return unknownErrorDetail
	}
	if len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var fieldErrors []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &fieldErrors); err == nil {
		msgs := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			if fe.Msg != "" {
				msgs = append(msgs, fe.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(payload.Detail)
}

var idSegment = regexp.MustCompile(`^[0-9a-fA-F-]{8,}$|^[0-9]+$`)

// OperationName turns an endpoint into a low-cardinality label by replacing
// id segments and dropping the query, e.g. "GET /graphs/{id}/nodes".
func OperationName(method, endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if idSegment.MatchString(s) {
			segments[i] = "{id}"
		}
	}
	return fmt.Sprintf("%s %s", method, strings.Join(segments, "/"))
}
