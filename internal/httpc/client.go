// Package httpc is a small client for the jockey operator API, built on
// an http.Client with explicit timeouts.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-spacejockey/pkg/planner"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultConnectTimeout = 5 * time.Second
	DefaultKeepAlive      = 30 * time.Second
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// NewHTTPClient returns an http.Client with the package's timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jockey api: %d %s", e.Code, e.Message)
}

// Client talks to one jockey instance.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for addr, which may be "host:port" or a full URL.
func New(addr string) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse jockey address: %w", err)
	}
	return &Client{base: u, http: NewHTTPClient(DefaultTimeout)}, nil
}

// Status fetches the planner status.
func (c *Client) Status(ctx context.Context) (planner.Status, error) {
	var st planner.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

// AddWaypoint queues a waypoint and returns it as the server recorded it.
func (c *Client) AddWaypoint(ctx context.Context, req protocol.WaypointRequest) (waypoint.Waypoint, error) {
	var w waypoint.Waypoint
	err := c.do(ctx, http.MethodPost, "/api/waypoints", req, &w)
	return w, err
}

// Actions fetches up to limit of the most recent actions.
func (c *Client) Actions(ctx context.Context, limit int) ([]protocol.PlannerAction, error) {
	var out []protocol.PlannerAction
	err := c.do(ctx, http.MethodGet, "/api/actions?limit="+strconv.Itoa(limit), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
