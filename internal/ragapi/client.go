// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths on the workspace backend.
const (
	streamPath = "/chat/stream"
	clearPath  = "/chat/clear"
)

// sessionHeader carries the conversation ID the backend keys its
// server-side session memory by.
const sessionHeader = "X-Session-Id"

// readBufferSize is the chunk size for reads off the response body. The
// splitter handles frames crossing any chunk boundary, so the size only
// affects latency granularity.
const readBufferSize = 4096

// sharedStreamingClient is used for all streaming requests. It carries no
// request timeout: a stream lives until the server closes it or the caller
// cancels the context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// ERRORS
// =============================================================================

// BackendError represents a non-2xx response from the backend.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the workspace's RAG backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedStreamingClient,
	}
}

// WithHTTPClient overrides the HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// streamRequest is the body of a POST /chat/stream call.
type streamRequest struct {
	Message string `json:"message"`
}

// UpdateCallback receives each canonical update as the stream produces it.
type UpdateCallback func(Update)

// StreamChat sends a user message and consumes the resulting event stream,
// invoking the callback for every canonical update in arrival order. It
// returns after the done update, on end-of-stream (a connection close is an
// implicit terminator and is not an error), on context cancellation, or on a
// transport failure.
//
// Individual malformed frames are dropped without aborting the stream; only
// whole-request failures are returned.
func (c *Client) StreamChat(ctx context.Context, sessionID, message string, callback UpdateCallback) error {
	bodyBytes, err := json.Marshal(streamRequest{Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(sessionHeader, sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &BackendError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return c.consumeStream(ctx, resp.Body, callback)
}

// consumeStream reads the body chunk by chunk, splits it into frames, and
// dispatches canonical updates until done, EOF, or cancellation.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, callback UpdateCallback) error {
	splitter := NewFrameSplitter()
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, frame := range splitter.Feed(string(buf[:n])) {
				if dispatchFrame(frame, callback) {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				// Implicit terminator: flush whatever the close truncated.
				if frame, ok := splitter.Flush(); ok {
					dispatchFrame(frame, callback)
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
	}
}

// dispatchFrame interprets one frame and invokes the callback for each
// resulting update. Returns true when a done update terminated the stream.
func dispatchFrame(frame string, callback UpdateCallback) bool {
	done := false
	for _, update := range InterpretFrame(frame) {
		callback(update)
		if update.Kind == UpdateDone {
			done = true
		}
	}
	return done
}

// ClearSession asks the backend to drop any server-side session state keyed
// by the conversation ID. Used when a conversation is deleted locally;
// callers treat failures as best-effort.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+clearPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(sessionHeader, sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &BackendError{Status: resp.StatusCode}
	}
	return nil
}
