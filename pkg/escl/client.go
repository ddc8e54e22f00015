package escl

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docscan/docscan-go/pkg/log"
)

// Default client settings.
const (
	DefaultTimeout      = 2 * time.Minute
	DefaultPollInterval = 500 * time.Millisecond
	DefaultBusyRetries  = 20
)

// maxBody limits XML responses.
const maxBody = 1 << 20

var (
	// ErrBusy is returned when the device answers 503 Service Unavailable.
	ErrBusy = errors.New("escl: scanner busy")

	// ErrNoMoreDocuments is returned by NextDocument when the job is exhausted.
	ErrNoMoreDocuments = errors.New("escl: no more documents")
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("escl: %s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Timeout bounds each HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Insecure skips TLS verification for _uscans endpoints, which
	// commonly present self-signed certificates.
	Insecure bool

	// HTTPClient overrides the client built from Timeout and Insecure.
	HTTPClient *http.Client

	// Logger for operational messages. Nil disables.
	Logger *slog.Logger

	// EventLog receives REQUEST events. Nil disables.
	EventLog log.Logger

	// SessionID is stamped on trace events.
	SessionID string
}

// Client is an eSCL HTTP client bound to one device base URL
// (for example "http://10.0.0.5:80/eSCL").
type Client struct {
	base      *url.URL
	http      *http.Client
	logger    *slog.Logger
	eventLog  log.Logger
	sessionID string
}

// NewClient creates a client for the device at baseURL.
func NewClient(baseURL string, cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("escl: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("escl: invalid base URL %q: scheme must be http or https", baseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.Insecure},
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	eventLog := cfg.EventLog
	if eventLog == nil {
		eventLog = log.NoopLogger{}
	}
	return &Client{
		base:      u,
		http:      hc,
		logger:    cfg.Logger,
		eventLog:  eventLog,
		sessionID: cfg.SessionID,
	}, nil
}

// BaseURL returns the device base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// resolve makes a Location header absolute.
func (c *Client) resolve(location string) (string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("escl: invalid job location %q: %w", location, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Capabilities fetches and decodes the device's ScannerCapabilities.
func (c *Client) Capabilities(ctx context.Context) (*ScannerCapabilities, error) {
	data, err := c.getXML(ctx, c.endpoint("ScannerCapabilities"))
	if err != nil {
		return nil, err
	}
	return ParseCapabilities(data)
}

// Status fetches and decodes the device's ScannerStatus.
func (c *Client) Status(ctx context.Context) (*ScannerStatus, error) {
	data, err := c.getXML(ctx, c.endpoint("ScannerStatus"))
	if err != nil {
		return nil, err
	}
	return ParseStatus(data)
}

// CreateJob submits settings and returns the absolute job URL.
// Returns ErrBusy when the device is busy.
func (c *Client) CreateJob(ctx context.Context, settings *ScanSettings) (string, error) {
	body, err := settings.Marshal()
	if err != nil {
		return "", err
	}
	target := c.endpoint("ScanJobs")
	resp, err := c.do(ctx, http.MethodPost, target, bytes.NewReader(body), "text/xml")
	if err != nil {
		return "", err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusServiceUnavailable:
		return "", ErrBusy
	default:
		return "", statusError(resp, http.MethodPost, target)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("escl: POST %s: response has no Location header", target)
	}
	return c.resolve(location)
}

// Document is one retrieved page.
type Document struct {
	Body        io.ReadCloser
	ContentType string
}

// NextDocument requests the next page of a job. It returns
// ErrNoMoreDocuments when the job is exhausted and ErrBusy while the
// device is still scanning. The caller must close Body.
func (c *Client) NextDocument(ctx context.Context, jobURL string) (*Document, error) {
	target := strings.TrimSuffix(jobURL, "/") + "/NextDocument"
	resp, err := c.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &Document{Body: resp.Body, ContentType: resp.Header.Get("Content-Type")}, nil
	case http.StatusNotFound, http.StatusGone:
		drain(resp)
		return nil, ErrNoMoreDocuments
	case http.StatusServiceUnavailable:
		drain(resp)
		return nil, ErrBusy
	default:
		defer drain(resp)
		return nil, statusError(resp, http.MethodGet, target)
	}
}

// DeleteJob cancels a job. A job that no longer exists is not an error.
func (c *Client) DeleteJob(ctx context.Context, jobURL string) error {
	resp, err := c.do(ctx, http.MethodDelete, jobURL, nil, "")
	if err != nil {
		return err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusGone:
		return nil
	default:
		return statusError(resp, http.MethodDelete, jobURL)
	}
}

func (c *Client) getXML(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, ErrBusy
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, http.MethodGet, target)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("escl: read %s: %w", target, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("escl: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.trace(log.RequestEvent{Direction: log.DirectionOut, Method: method, URL: target})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("escl: request failed", "method", method, "url", target, "error", err)
		}
		return nil, fmt.Errorf("escl: %s %s: %w", method, target, err)
	}
	elapsed := time.Since(start)
	c.trace(log.RequestEvent{Direction: log.DirectionIn, Method: method, URL: target, Status: resp.StatusCode, Duration: &elapsed})
	if c.logger != nil {
		c.logger.Debug("escl: response", "method", method, "url", target, "status", resp.StatusCode, "elapsed", elapsed)
	}
	return resp, nil
}

func (c *Client) trace(ev log.RequestEvent) {
	c.eventLog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		Layer:     log.LayerDevice,
		Category:  log.CategoryRequest,
		Request:   &ev,
	})
}

func statusError(resp *http.Response, method, target string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Method: method,
		URL:    target,
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	_ = resp.Body.Close()
}
