// Package rest implements the canvas Store interface on top of the HTTP
// API, for clients and tooling that talk to a running server.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"atelier/pkg/canvas"
)

// Client is a canvas.Store backed by the HTTP API. The zero value is not
// usable; construct it with NewClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token sent on every request. Without a token
// the client can still read, and mutate public canvases.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the API at baseURL, e.g.
// "https://example.com".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiError struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return canvas.ErrNotFound
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return canvas.ErrReadOnly
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("api: %s (%d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ListCards fetches all cards of a canvas.
func (c *Client) ListCards(ctx context.Context, canvasID string) ([]canvas.Card, error) {
	var out struct {
		Cards []canvas.Card `json:"cards"`
	}
	path := "/api/canvases/" + url.PathEscape(canvasID) + "/cards"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// CreateCard creates a card on its canvas.
func (c *Client) CreateCard(ctx context.Context, params canvas.CreateCardParams) (canvas.Card, error) {
	var out struct {
		Card canvas.Card `json:"card"`
	}
	path := "/api/canvases/" + url.PathEscape(params.CanvasID) + "/cards"
	if err := c.do(ctx, http.MethodPost, path, params, &out); err != nil {
		return canvas.Card{}, err
	}
	return out.Card, nil
}

// UpdateCard applies a partial update to a card.
func (c *Client) UpdateCard(ctx context.Context, params canvas.UpdateCardParams) (canvas.Card, error) {
	var out struct {
		Card canvas.Card `json:"card"`
	}
	path := "/api/cards/" + url.PathEscape(params.ID)
	if err := c.do(ctx, http.MethodPatch, path, params, &out); err != nil {
		return canvas.Card{}, err
	}
	return out.Card, nil
}

// DeleteCard removes a card; its children are detached server-side.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cards/"+url.PathEscape(id), nil, nil)
}

// UpdateCardSize persists a manual card size.
func (c *Client) UpdateCardSize(ctx context.Context, params canvas.UpdateCardSizeParams) error {
	path := "/api/cards/" + url.PathEscape(params.ID) + "/size"
	return c.do(ctx, http.MethodPatch, path, params, nil)
}

// UpdateCardPositions writes a batch of positions in one call.
func (c *Client) UpdateCardPositions(ctx context.Context, positions []canvas.CardPosition) error {
	body := struct {
		Positions []canvas.CardPosition `json:"positions"`
	}{Positions: positions}
	return c.do(ctx, http.MethodPost, "/api/cards/positions", body, nil)
}
