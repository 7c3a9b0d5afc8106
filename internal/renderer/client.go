package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ndavault/internal/config"
)

const (
	maxPDFBytes   = 50 << 20
	maxErrorBytes = 512
	pageTitle     = "Employee Nondisclosure Agreement"
)

// ErrRender matches every failure returned by Client.Render.
var ErrRender = errors.New("pdf rendering failed")

// RenderError describes why the remote renderer did not return a PDF.
type RenderError struct {
	Cause      string
	StatusCode int
	Err        error
}

func (e *RenderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("render pdf: %s (status %d)", e.Cause, e.StatusCode)
	}
	return "render pdf: " + e.Cause
}

func (e *RenderError) Is(target error) bool { return target == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }

// Client posts formatted HTML to the remote PDF service.
// It performs exactly one attempt per call.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	maxBytes   int64
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxBytes caps the accepted PDF size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// NewClient validates the renderer configuration and builds a client with a
// fixed request timeout.
func NewClient(cfg config.RendererConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("renderer url is invalid: %q", cfg.URL)
	}
	if cfg.TimeoutSec <= 0 {
		return nil, fmt.Errorf("renderer timeout must be positive")
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: u.String(),
		token:    cfg.Token,
		maxBytes: maxPDFBytes,
		logger:   logger.With(slog.String("component", "renderer_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type renderRequest struct {
	HTML string `json:"html"`
}

// Render formats text into a printable page and returns the PDF bytes.
func (c *Client) Render(ctx context.Context, text string) ([]byte, error) {
	page, err := Page(pageTitle, FormatHTML(text))
	if err != nil {
		return nil, &RenderError{Cause: "build page", Err: err}
	}

	body, err := json.Marshal(renderRequest{HTML: page})
	if err != nil {
		return nil, &RenderError{Cause: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RenderError{Cause: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("X-Internal-Token", c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cause := "renderer unreachable"
		if isTimeout(err) {
			cause = "renderer timed out"
		}
		c.logger.ErrorContext(ctx, "render request failed",
			slog.String("cause", cause),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, &RenderError{Cause: cause, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		c.logger.ErrorContext(ctx, "renderer returned error status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, &RenderError{Cause: "renderer returned non-success status", StatusCode: resp.StatusCode}
	}

	pdf, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		cause := "read renderer response"
		if isTimeout(err) {
			cause = "renderer timed out"
		}
		return nil, &RenderError{Cause: cause, Err: err}
	}
	if int64(len(pdf)) > c.maxBytes {
		c.logger.ErrorContext(ctx, "renderer response too large",
			slog.Int64("limit", c.maxBytes),
			slog.Duration("duration", time.Since(start)),
		)
		return nil, &RenderError{Cause: "renderer response exceeds size limit", StatusCode: resp.StatusCode}
	}
	if len(pdf) == 0 {
		return nil, &RenderError{Cause: "renderer returned an empty document", StatusCode: resp.StatusCode}
	}

	c.logger.InfoContext(ctx, "pdf rendered",
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
