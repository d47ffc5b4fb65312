// Package httpapi implements the APIClient port over HTTP with the back-office
// JSON envelope: {"data": ...} on success and {"message": ...} on failure.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent is sent when Options.UserAgent is empty.
	DefaultUserAgent = "backoffice-client"
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 32 << 20
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root every request path is appended to.
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	// Timeout bounds each request including reading the body.
	Timeout time.Duration
	// RateLimit caps requests per second. Zero disables throttling.
	RateLimit float64
	Burst     int
	UserAgent string
	// HTTPClient replaces the default client. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client implements ports.APIClient.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     ports.Tracer
	logger     ports.Logger
}

// New creates a Client. The base URL must be an absolute http(s) URL.
func New(opts Options, tracer ports.Tracer, logger ports.Logger) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "api.baseURL"), "value", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}

	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		token:      opts.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    limiter,
		tracer:     tracer,
		logger:     logger,
	}, nil
}

// Do sends one request and decodes the envelope data into out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (err error) {
	requestID := uuid.NewString()
	route, _, _ := strings.Cut(path, "?")

	ctx, span := c.tracer.Start(ctx, "http "+method+" "+route,
		ports.WithAttribute("http.method", method),
		ports.WithAttribute("http.route", route),
		ports.WithAttribute("request_id", requestID),
	)
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			// Wait fails early when the deadline cannot be met; that is a timeout too.
			if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
				return domain.NewTimeoutError(waitErr)
			}
			return classifyTransport(waitErr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureSlash(path), payload)
	if err != nil {
		return domain.NewNetworkError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransport(err)
	}

	span.SetAttribute("http.status_code", resp.StatusCode)
	c.logger.Debug(fmt.Sprintf("%s %s -> %d in %s [%s]", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewAPIError(resp.StatusCode, errorMessage(resp.StatusCode, raw))
	}
	return decodeEnvelope(raw, out)
}

func ensureSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func encodeBody(body any) (io.Reader, error) {
	if body == nil {
		return http.NoBody, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.APIError{
			Kind:    domain.KindValidation,
			Field:   "body",
			Message: "payload is not serializable",
			Cause:   err,
		}
	}
	return bytes.NewReader(data), nil
}

// classifyTransport maps a failed round trip to a Timeout or Network error.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewTimeoutError(err)
	}
	return domain.NewNetworkError(err)
}

// errorMessage extracts the server message from an error body, falling back to the status text.
func errorMessage(status int, raw []byte) string {
	if gjson.ValidBytes(raw) {
		for _, path := range []string{"message", "error.message", "error"} {
			if r := gjson.GetBytes(raw, path); r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func decodeEnvelope(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewDecodeError(errors.New("empty response body"))
	}
	if !gjson.ValidBytes(raw) {
		return domain.NewDecodeError(errors.New("response is not valid JSON"))
	}
	data := gjson.GetBytes(raw, "data")
	if !data.Exists() {
		return domain.NewDecodeError(errors.New("response has no data member"))
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return domain.NewDecodeError(err)
	}
	return nil
}
