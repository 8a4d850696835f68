//go:build unix

// Package apiclient talks to a running KiAssist daemon over its unix socket.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kiassist/kiassist/internal/limits"
)

// RequestIDHeader correlates client and daemon log lines.
const RequestIDHeader = "X-Request-ID"

// Client is safe for concurrent use. Requests are bounded by their context
// only; model calls behind /api can run for minutes.
type Client struct {
	http       *http.Client
	socketPath string
}

func New(socketPath string) *Client {
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	return &Client{
		socketPath: socketPath,
		http: &http.Client{Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", socketPath)
			},
			ResponseHeaderTimeout: 120 * time.Second,
			IdleConnTimeout:       60 * time.Second,
		}},
	}
}

func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// APIError is a non-2xx reply. Message comes from an {"error": "..."} body.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// GetJSON fetches path and decodes the reply into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

// PostJSON sends in as the JSON body and decodes the reply into out, which
// may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if len(body) > limits.JSON {
		return fmt.Errorf("request body exceeds %d bytes", limits.JSON)
	}
	return c.roundTrip(ctx, http.MethodPost, path, body, out)
}

// Call invokes the facade method name.
func (c *Client) Call(ctx context.Context, name string, in, out any) error {
	return c.PostJSON(ctx, "/api/"+name, in, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, "http://kiassist"+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.connError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, limits.JSON)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, limits.ErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	msg := string(bytes.TrimSpace(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(RequestIDHeader),
		Message:    msg,
	}
}

// connError adds a hint when nothing is listening on the socket.
func (c *Client) connError(err error) error {
	if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("cannot connect to kiassist daemon at %s; is it running? try `kiassist daemon start` (%w)", c.socketPath, err)
	}
	return err
}
