package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/payload"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultTokenScheme = "Token"
	defaultOrdersPath  = "/orders/"
	idempotencyHeader  = "Idempotency-Key"
	maxBodyBytes       = 8 << 20
	tracerName         = "ecocycle.app/storefront/internal/backend"
)

var (
	// ErrMissingToken is returned before any request is made when an endpoint needs a token.
	ErrMissingToken = errors.New("backend: missing auth token")
	// ErrUnauthorized indicates the backend rejected the token (401/403).
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("backend: not found")
)

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap maps auth and not-found statuses onto the sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// IsAuthError reports whether err means the caller must log in (again).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrMissingToken)
}

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	HTTPClient  HTTPClient
	Timeout     time.Duration
	TokenScheme string
	OrdersPath  string
	// Meter records call latency. Defaults to the global meter provider.
	Meter metric.Meter
}

// Client talks to the EcoCycle REST backend.
type Client struct {
	base        *url.URL
	client      HTTPClient
	tokenScheme string
	ordersPath  string
	tracer      trace.Tracer
	latency     metric.Float64Histogram
	validate    *validator.Validate
}

// New constructs a Client for the given base URL.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend: unsupported base URL scheme %q", parsed.Scheme)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	scheme := strings.TrimSpace(opts.TokenScheme)
	if scheme == "" {
		scheme = defaultTokenScheme
	}
	ordersPath := strings.TrimSpace(opts.OrdersPath)
	if ordersPath == "" {
		ordersPath = defaultOrdersPath
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(tracerName)
	}
	latency, err := meter.Float64Histogram(
		"ecocycle.backend.call.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of calls to the EcoCycle backend"),
	)
	if err != nil {
		latency, _ = noop.NewMeterProvider().Meter(tracerName).Float64Histogram("ecocycle.backend.call.duration")
	}

	return &Client{
		base:        parsed,
		client:      client,
		tokenScheme: scheme,
		ordersPath:  ordersPath,
		tracer:      otel.Tracer(tracerName),
		latency:     latency,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// BaseURL returns the resolved backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// AuthorizationHeader formats token with the configured scheme.
func (c *Client) AuthorizationHeader(token string) string {
	return c.tokenScheme + " " + token
}

type call struct {
	op          string
	method      string
	endpoint    string
	token       string
	body        any
	idempotent  bool
	expect      []int
	requireAuth bool
}

// do executes the call and returns the response body of a successful response.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	if cl.requireAuth && strings.TrimSpace(cl.token) == "" {
		return nil, ErrMissingToken
	}

	ctx, span := c.tracer.Start(ctx, "backend."+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", cl.endpoint),
		),
	)
	defer span.End()

	started := time.Now()
	body, err := c.roundTrip(ctx, cl)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.latency.Record(ctx, float64(time.Since(started))/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("op", cl.op),
		attribute.String("outcome", outcome),
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			span.SetAttributes(attribute.Int("http.response.status_code", statusErr.StatusCode))
		}
		observability.FromContext(ctx).Warn("backend call failed",
			zap.String("op", cl.op),
			zap.String("endpoint", cl.endpoint),
			zap.Error(err),
		)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	var reader io.Reader
	if cl.body != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(cl.body); err != nil {
			return nil, fmt.Errorf("backend: %s: encode payload: %w", cl.op, err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.resolve(cl.endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(cl.token); token != "" {
		req.Header.Set("Authorization", c.AuthorizationHeader(token))
	}
	if cl.idempotent {
		req.Header.Set(idempotencyHeader, uuid.NewString())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s: request failed: %w", cl.op, err)
	}
	defer resp.Body.Close()

	if !expected(resp.StatusCode, cl.expect) {
		return nil, errorFromResponse(cl.op, resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: %s: read body: %w", cl.op, err)
	}
	return data, nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return c.base.ResolveReference(ref).String()
}

func expected(status int, allowed []int) bool {
	if len(allowed) == 0 {
		return status >= 200 && status < 300
	}
	for _, code := range allowed {
		if status == code {
			return true
		}
	}
	return false
}

func errorFromResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var errPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	message := ""
	if len(body) > 0 && json.Unmarshal(body, &errPayload) == nil {
		for _, candidate := range []string{errPayload.Error, errPayload.Message, errPayload.Detail} {
			if strings.TrimSpace(candidate) != "" {
				message = strings.TrimSpace(candidate)
				break
			}
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: message}
}

// getList fetches a list endpoint and normalizes its shape.
func getList[T any](ctx context.Context, c *Client, op, endpoint, token, key string, requireAuth bool) (List[T], error) {
	body, err := c.do(ctx, call{
		op:          op,
		method:      http.MethodGet,
		endpoint:    endpoint,
		token:       token,
		requireAuth: requireAuth,
	})
	if err != nil {
		return List[T]{}, err
	}
	items, diagnostic := payload.Decode[T](body, key)
	if diagnostic != "" {
		observability.FromContext(ctx).Warn("unexpected backend payload",
			zap.String("op", op),
			zap.String("endpoint", endpoint),
			zap.String("diagnostic", diagnostic),
		)
	}
	return List[T]{Items: items, Diagnostic: diagnostic}, nil
}

// getObject fetches a single JSON object into T.
func getObject[T any](ctx context.Context, c *Client, op, endpoint, token string, requireAuth bool) (T, error) {
	var out T
	body, err := c.do(ctx, call{
		op:          op,
		method:      http.MethodGet,
		endpoint:    endpoint,
		token:       token,
		requireAuth: requireAuth,
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("backend: %s: decode: %w", op, err)
	}
	return out, nil
}

func escapeSegment(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}
