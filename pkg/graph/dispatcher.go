package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/fbgraph/internal/observability/metrics"
	"github.com/wolfman30/fbgraph/pkg/logging"
)

// DefaultBaseURL is the API origin every path is resolved against.
const DefaultBaseURL = "https://graph.facebook.com"

var tracer = otel.Tracer("fbgraph.pkg.graph")

// Observer receives call outcomes. *metrics.GraphMetrics satisfies it.
type Observer interface {
	ObserveRequest(method, outcome string, seconds float64)
	ObserveTokenMint(ok bool)
}

// Config controls how façades reach the API.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Version is the path segment inserted after the origin, e.g. "v2.6".
	// Empty means unversioned calls.
	Version    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Transport overrides the net/http transport entirely.
	Transport Transport
	Logger    *logging.Logger
	Metrics   Observer
	UserAgent string
}

// Call describes one authenticated request.
type Call struct {
	Method string
	Path   string
	// Auth parameters always override Extra parameters of the same key.
	Auth  Params
	Extra Params
	// JSON is marshalled unless it is already json.RawMessage or []byte.
	JSON  any
	Files map[string]File
}

// Result is a successful response body.
type Result struct {
	StatusCode int
	Raw        json.RawMessage
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if len(r.Raw) == 0 {
		return fmt.Errorf("graph: decode: empty body")
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("graph: decode: %w", err)
	}
	return nil
}

// Object decodes the body as a JSON object.
func (r *Result) Object() (map[string]any, error) {
	var out map[string]any
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bool interprets bare `true`/`false` bodies as well as {"success": bool}.
func (r *Result) Bool() (bool, error) {
	var b bool
	if err := json.Unmarshal(r.Raw, &b); err == nil {
		return b, nil
	}
	var wrapped struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(r.Raw, &wrapped); err == nil && wrapped.Success != nil {
		return *wrapped.Success, nil
	}
	return false, fmt.Errorf("graph: body is not a boolean result: %s", r.Raw)
}

// Dispatcher is the shared call path used by every façade.
type Dispatcher struct {
	transport Transport
	baseURL   string
	version   string
	logger    *logging.Logger
	observer  Observer
}

// NewDispatcher applies defaults to cfg.
func NewDispatcher(cfg Config) *Dispatcher {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := cfg.Transport
	if transport == nil {
		client := cfg.HTTPClient
		if client == nil {
			timeout := cfg.Timeout
			if timeout <= 0 {
				timeout = defaultHTTPTimeout
			}
			client = &http.Client{Timeout: timeout}
		}
		transport = NewHTTPTransport(client, cfg.UserAgent)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		transport: transport,
		baseURL:   baseURL,
		version:   strings.Trim(strings.TrimSpace(cfg.Version), "/"),
		logger:    logger,
		observer:  cfg.Metrics,
	}
}

// URL composes origin, optional version and path.
func (d *Dispatcher) URL(path string) string {
	path = strings.Trim(path, "/")
	parts := []string{d.baseURL}
	if d.version != "" {
		parts = append(parts, d.version)
	}
	if path != "" {
		parts = append(parts, path)
	}
	return strings.Join(parts, "/")
}

// Version reports the configured version segment.
func (d *Dispatcher) Version() string { return d.version }

// Call performs one request and classifies the response. An `error` object
// in the body yields *Error whatever the status; a non-2xx status without one
// yields *StatusError. The transport is invoked exactly once.
func (d *Dispatcher) Call(ctx context.Context, call Call) (*Result, error) {
	method := strings.ToUpper(strings.TrimSpace(call.Method))
	if method == "" {
		method = http.MethodGet
	}
	body, err := encodeJSON(call.JSON)
	if err != nil {
		return nil, err
	}
	path := strings.Trim(call.Path, "/")
	requestID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "graph.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("fbgraph.path", path),
			attribute.String("fbgraph.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := d.transport.Do(ctx, &Request{
		Method: method,
		URL:    d.URL(path),
		Params: Merge(call.Extra, call.Auth),
		JSON:   body,
		Files:  call.Files,
	})
	elapsed := time.Since(start)
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
		d.finish(span, method, path, requestID, 0, metrics.OutcomeTransport, elapsed, err)
		return nil, err
	}

	result, outcome, err := interpret(resp)
	d.finish(span, method, path, requestID, resp.StatusCode, outcome, elapsed, err)
	return result, err
}

func interpret(resp *Response) (*Result, string, error) {
	if fault := classify(resp.Body); fault != nil {
		fault.StatusCode = resp.StatusCode
		return nil, metrics.OutcomeRemote, fault
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, metrics.OutcomeStatus, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return &Result{StatusCode: resp.StatusCode}, metrics.OutcomeOK, nil
	}
	if !json.Valid(body) {
		snippet := body
		if len(snippet) > 128 {
			snippet = snippet[:128]
		}
		return nil, metrics.OutcomeMalformed, fmt.Errorf("%w: %q", ErrMalformedResponse, snippet)
	}
	return &Result{StatusCode: resp.StatusCode, Raw: json.RawMessage(body)}, metrics.OutcomeOK, nil
}

func (d *Dispatcher) finish(span trace.Span, method, path, requestID string, status int, outcome string, elapsed time.Duration, err error) {
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if d.observer != nil {
		d.observer.ObserveRequest(method, outcome, elapsed.Seconds())
	}
	d.logger.Debug("graph call",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", status,
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
	)
}
