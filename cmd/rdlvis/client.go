// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/iso15926vis/rdlvis/internal/catalog"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by server commands.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// serverClient provides HTTP access to a running rdlvis server.
type serverClient struct {
	baseURL string
	http    *http.Client
}

// newServerClient creates a client targeting the given host:port address.
func newServerClient(addr string) *serverClient {
	return &serverClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *serverClient) getJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, dest)
}

// postJSON performs a bodiless POST and decodes the JSON response into dest.
func (c *serverClient) postJSON(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodPost, path, dest)
}

// do returns CodeCLIServerNotRunning when the connection is refused.
func (c *serverClient) do(ctx context.Context, method, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeCLIRequestFailure, "building request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return rdlerr.New(rdlerr.CodeCLIServerNotRunning, "server is not running (connection refused)",
				rdlerr.Field("addr", c.baseURL))
		}
		return rdlerr.Wrap(err, rdlerr.CodeCLIRequestFailure, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return rdlerr.New(rdlerr.CodeCLIRequestFailure,
			fmt.Sprintf("server returned status %d: %s", resp.StatusCode, problemDetail(body)),
			rdlerr.Field("status", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeCLIResponseInvalid, "invalid response")
	}
	return nil
}

// problemDetail extracts the detail of an RFC 9457 problem body, falling back
// to the raw text.
func problemDetail(body []byte) string {
	var p struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &p); err == nil && p.Detail != "" {
		return p.Detail
	}
	return strings.TrimSpace(string(body))
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// notifyReload asks a running server to reload the current snapshot. An
// unreachable server is reported, not returned, since the next serve picks
// the snapshot up anyway.
func notifyReload(ctx context.Context, w io.Writer, addr string) {
	var st catalog.Status
	err := newServerClient(addr).postJSON(ctx, "/api/v1/ctrl/reload", &st)
	switch {
	case rdlerr.HasCode(err, rdlerr.CodeCLIServerNotRunning):
		_, _ = fmt.Fprintln(w, "Server is down, skipping reload.")
	case err != nil:
		_, _ = fmt.Fprintf(w, "Error reloading graph: %s\n", err)
	default:
		_, _ = fmt.Fprintf(w, "Graph reloaded: %s (%d triples)\n", st.Snapshot, st.Triples)
	}
}
