// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/metrics"
)

const (
	tracerName       = "claimcheck/internal/common/http"
	defaultUserAgent = "claimcheck/1.0"
	maxErrorBody     = 512
)

// Client talks to the verification backend. Every method resolves endpoint
// paths against the configured base URL and maps failures onto the shared
// error model: network errors, deadline overruns and non-2xx statuses are
// distinguishable by code.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// NewClient builds a backend client. A zero timeout leaves cancellation to
// the caller's context.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  defaultUserAgent,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req.WithContext(ctx))
}

// PostJSON POSTs payload as JSON and returns the raw 2xx body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, stderrors.NewInternalError(fmt.Errorf("encode %s request: %w", endpoint, err))
	}
	return c.send(ctx, http.MethodPost, endpoint, nil, bytes.NewReader(body), "application/json")
}

// PostQuery POSTs with an empty body and the given query parameters.
func (c *Client) PostQuery(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.send(ctx, http.MethodPost, endpoint, params, nil, "")
}

// MultipartFile is a single-field file upload.
type MultipartFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// PostMultipart uploads file as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, endpoint string, file MultipartFile) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, stderrors.NewInternalError(fmt.Errorf("create multipart part: %w", err))
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, stderrors.NewInternalError(fmt.Errorf("write multipart part: %w", err))
	}
	if err := mw.Close(); err != nil {
		return nil, stderrors.NewInternalError(fmt.Errorf("close multipart writer: %w", err))
	}

	return c.send(ctx, http.MethodPost, endpoint, nil, &buf, mw.FormDataContentType())
}

// Get issues a GET against endpoint and returns the raw 2xx body.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, endpoint, nil, nil, "")
}

// Fetch dereferences an absolute URL outside the backend and returns its
// bytes plus the reported content type.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", stderrors.NewImageLoadFailedError(err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", classifyNetworkError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", stderrors.NewBackendStatusError(rawURL, resp.StatusCode, nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", stderrors.NewBackendUnavailableError(rawURL, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values, body io.Reader, contentType string) ([]byte, error) {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	ctx, span := c.tracer.Start(ctx, method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("claimcheck.endpoint", endpoint),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, stderrors.NewInternalError(fmt.Errorf("build %s request: %w", endpoint, err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		stdErr := classifyNetworkError(ctx, endpoint, err)
		outcome := metrics.OutcomeUnavailable
		if stdErr.Code == stderrors.ErrCodeBackendTimeout {
			outcome = metrics.OutcomeTimeout
		}
		metrics.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, stdErr
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.BackendRequests.WithLabelValues(endpoint, metrics.OutcomeStatus).Inc()
		span.SetStatus(codes.Error, resp.Status)
		var cause error
		if len(snippet) > 0 {
			cause = errors.New(strings.TrimSpace(string(snippet)))
		}
		return nil, stderrors.NewBackendStatusError(endpoint, resp.StatusCode, cause)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, metrics.OutcomeUnavailable).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, classifyNetworkError(ctx, endpoint, err)
	}

	metrics.BackendRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	return data, nil
}

func classifyNetworkError(ctx context.Context, endpoint string, err error) *stderrors.StandardError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stderrors.NewBackendTimeoutError(endpoint, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return stderrors.NewBackendTimeoutError(endpoint, err)
	}
	return stderrors.NewBackendUnavailableError(endpoint, err)
}

// DecodeJSON unmarshals a backend body, reporting failures as decode errors.
func DecodeJSON(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return stderrors.NewPayloadDecodeError(endpoint, err)
	}
	return nil
}
