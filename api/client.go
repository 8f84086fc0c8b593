package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 32 << 20
	requestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer credential for authenticated requests.
// *session.Manager satisfies it.
type TokenSource interface {
	Token() string
}

// Observer is told about every completed request. status is zero when no response
// was received.
type Observer func(method, path string, status int, elapsed time.Duration, err error)

// Config configures a [Client].
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client sends requests to the backend.
type Client struct {
	base      string
	http      *http.Client
	tokens    TokenSource
	userAgent string
	logger    *slog.Logger
	observer  Observer
	maxBody   int64
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client; its Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResponseSize caps how many response bytes are read. Larger bodies fail
// with [ErrTransport] instead of being cut short.
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithObserver registers a per-request callback.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient validates cfg and returns a Client that reads bearer tokens from tokens.
func NewClient(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidRequest, cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		base:      strings.TrimRight(u.String(), "/"),
		http:      &http.Client{Timeout: timeout},
		tokens:    tokens,
		userAgent: cfg.UserAgent,
		logger:    slog.Default(),
		maxBody:   maxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "/account/all".
	Path string
	// Body is JSON-encoded when non-nil.
	Body any
	// Auth attaches the bearer credential.
	Auth bool
}

// Do sends req and decodes the envelope into out, which is usually a *Envelope[T].
// out may be nil when the payload is not needed.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body io.Reader
	contentType := ""
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := c.newRequest(ctx, req.Method, req.Path, body, contentType, req.Auth)
	if err != nil {
		return err
	}

	resp, data, err := c.send(httpReq)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp.StatusCode, data, out)
}

// Call is a typed convenience over [Client.Do].
func Call[T any](ctx context.Context, c *Client, req Request) (Envelope[T], error) {
	var env Envelope[T]
	err := c.Do(ctx, req, &env)
	return env, err
}

// FormFile is one file part of a multipart upload.
type FormFile struct {
	Field    string
	FileName string
	Content  []byte
}

// PostMultipart sends fields and files as multipart/form-data with the bearer credential.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FormFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("%w: form field %s: %v", ErrInvalidRequest, name, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return fmt.Errorf("%w: form file %s: %v", ErrInvalidRequest, f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return fmt.Errorf("%w: form file %s: %v", ErrInvalidRequest, f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), true)
	if err != nil {
		return err
	}
	resp, data, err := c.send(httpReq)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp.StatusCode, data, out)
}

// Download is a raw response body returned by a streaming endpoint.
type Download struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Download fetches path as raw bytes with the bearer credential. Error responses
// are still decoded as envelopes.
func (c *Client) Download(ctx context.Context, path string) (Download, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, nil, "", true)
	if err != nil {
		return Download{}, err
	}
	resp, data, err := c.send(httpReq)
	if err != nil {
		return Download{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Download{}, decodeEnvelope(resp.StatusCode, data, nil)
	}

	d := Download{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.FileName = params["filename"]
		}
	}
	return d, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool) (*http.Request, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: path %q must be absolute", ErrInvalidRequest, path)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrTransport, err)
		c.finish(req, 0, start, err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		err = fmt.Errorf("%w: read body: %v", ErrTransport, err)
		c.finish(req, resp.StatusCode, start, err)
		return nil, nil, err
	}
	if int64(len(data)) > c.maxBody {
		err = fmt.Errorf("%w: response body exceeds %d bytes", ErrTransport, c.maxBody)
		c.finish(req, resp.StatusCode, start, err)
		return nil, nil, err
	}

	var outcome error
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = &StatusError{HTTPStatus: resp.StatusCode}
	}
	c.finish(req, resp.StatusCode, start, outcome)
	return resp, data, nil
}

func (c *Client) finish(req *http.Request, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"elapsed", elapsed,
		"request_id", req.Header.Get(requestIDHeader),
		"error", err,
	)
	if c.observer != nil {
		c.observer(req.Method, req.URL.Path, status, elapsed, err)
	}
}

func decodeEnvelope(httpStatus int, data []byte, out any) error {
	ok := httpStatus >= 200 && httpStatus <= 299

	if len(bytes.TrimSpace(data)) == 0 {
		if !ok {
			return &StatusError{HTTPStatus: httpStatus}
		}
		return nil
	}

	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		if !ok {
			return &StatusError{HTTPStatus: httpStatus}
		}
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !ok || raw.businessFailure() {
		return &StatusError{HTTPStatus: httpStatus, Status: raw.Status, Message: raw.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
