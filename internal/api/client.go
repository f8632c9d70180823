// Package api is the gateway client for the TUMatch REST backend. Every
// operation maps onto one HTTP call and normalizes failures into *Error or
// *NetworkError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tumatch/client/internal/logging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        logrus.FieldLogger
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport replaces the default transport, e.g. with an in-process backend.
	Transport http.RoundTripper
	// BearerToken is sent as "Authorization: Bearer <token>" when non-empty.
	BearerToken string
	Logger      logrus.FieldLogger
}

// New creates a new gateway client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	var log logrus.FieldLogger = cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		token: cfg.BearerToken,
		log:   log,
	}
}

// call describes one gateway request.
type call struct {
	op        string // fallback error message, e.g. "Failed to fetch events"
	method    string
	path      string
	query     url.Values
	body      interface{}
	out       interface{}
	retryRead bool
}

// do executes c. Idempotent reads get one retry on transport errors and 5xx responses.
func (c *Client) do(ctx context.Context, cl call) error {
	attempts := 1
	if cl.retryRead {
		attempts = 2
	}

	var err error
	for i := 0; i < attempts; i++ {
		var retryable bool
		retryable, err = c.once(ctx, cl)
		if err == nil || !retryable || ctx.Err() != nil {
			return err
		}
		c.log.WithError(err).WithField("path", cl.path).Debug("retrying read")
	}
	return err
}

func (c *Client) once(ctx context.Context, cl call) (retryable bool, err error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var bodyReader io.Reader
	if cl.body != nil {
		jsonBody, err := json.Marshal(cl.body)
		if err != nil {
			return false, fmt.Errorf("%s: marshal request: %w", cl.op, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, bodyReader)
	if err != nil {
		return false, fmt.Errorf("%s: create request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":     cl.method,
		"path":       cl.path,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return true, &NetworkError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()
	entry.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode >= 500, decodeError(cl.op, resp)
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, &NetworkError{Op: cl.op, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, cl.out); err != nil {
		return false, fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return false, nil
}

// decodeError picks the message: JSON "detail" string, then raw body text, then the fallback.
func decodeError(op string, resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))
	msg := op

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		if detail, ok := obj["detail"].(string); ok && detail != "" {
			msg = detail
		}
	} else if text != "" {
		msg = text
	}

	return &Error{Op: op, Status: resp.StatusCode, Message: msg}
}

func get(op, path string, query url.Values, out interface{}) call {
	return call{op: op, method: http.MethodGet, path: path, query: query, out: out, retryRead: true}
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}
