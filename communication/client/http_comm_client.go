package client

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

	"connect4/communication"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

// Client talks to the game server's HTTP API.
type Client struct {
	serverURL string
	http      *http.Client
}

// NewClient returns a client for serverURL. A nil httpClient selects one with
// a 30 second timeout.
func NewClient(serverURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      httpClient,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *Client) Start(ctx context.Context, cfg communication.GameConfig) (communication.GameState, error) {
	var state communication.GameState
	err := c.do(ctx, http.MethodPost, "/games/start", cfg, &state)
	return state, err
}

func (c *Client) Get(ctx context.Context, id string) (communication.GameState, error) {
	var state communication.GameState
	err := c.do(ctx, http.MethodGet, "/games/"+url.PathEscape(id), nil, &state)
	return state, err
}

func (c *Client) Move(ctx context.Context, id string, column int) (communication.GameState, error) {
	var state communication.GameState
	err := c.do(ctx, http.MethodPost, "/games/"+url.PathEscape(id)+"/move", communication.MoveRequest{Column: column}, &state)
	return state, err
}

func (c *Client) AIMove(ctx context.Context, id string) (communication.GameState, error) {
	var state communication.GameState
	err := c.do(ctx, http.MethodPost, "/games/"+url.PathEscape(id)+"/ai-move", nil, &state)
	return state, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/games/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr communication.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			apiErr.Detail = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Detail: apiErr.Detail}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
