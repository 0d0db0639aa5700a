package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blog-service/internal/auth"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
)

const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx answer from the blog API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blog api status %d: %s", e.Status, e.Message)
}

type Client struct {
	base  string
	hc    *http.Client
	token string
}

func New(base string) *Client {
	if base == "" {
		base = "http://localhost:8080"
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: DefaultTimeout},
	}
}

// SetToken makes later calls send the access token.
func (c *Client) SetToken(tok string) { c.token = tok }

func (c *Client) Login(ctx context.Context, username, password string) (auth.TokenResponse, error) {
	var out auth.TokenResponse
	err := c.do(ctx, http.MethodPost, "/login", auth.LoginRequest{Username: username, Password: password}, &out)
	if err == nil {
		c.token = out.AccessToken
	}
	return out, err
}

func (c *Client) ListPosts(ctx context.Context) ([]post.Post, error) {
	var out []post.Post
	err := c.do(ctx, http.MethodGet, "/posts", nil, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id int64) (post.Post, error) {
	var out post.Post
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	var out post.Post
	err := c.do(ctx, http.MethodPut, "/posts/create", p, &out)
	return out, err
}

func (c *Client) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	var out post.Post
	err := c.do(ctx, http.MethodPut, "/posts/update", p, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readAPIError understands both the JSON error payload and plain text bodies.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var p httpx.ErrorPayload
	if json.Unmarshal(raw, &p) == nil && p.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: p.Message}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}
