package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/stats"
)

type Client struct {
	http.Client
	Addr string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Status     string `json:"status"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("blog api: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}

	return fmt.Sprintf("blog api: %d %s", e.StatusCode, e.Status)
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/ping", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// ListArticles fetches the listing; bypass skips the server-side cache.
func (c *Client) ListArticles(ctx context.Context, bypass bool) ([]articleresponse.ArticleSummary, error) {
	q := url.Values{}
	if bypass {
		q.Set("bypass_cache", "1")
	}

	var list []articleresponse.ArticleSummary

	return list, c.getJSON(ctx, "/articles", q, &list)
}

func (c *Client) Search(ctx context.Context, query string) ([]articleresponse.ArticleSummary, error) {
	var list []articleresponse.ArticleSummary

	return list, c.getJSON(ctx, "/articles/search", url.Values{"q": {query}}, &list)
}

func (c *Client) Stats(ctx context.Context) (*stats.Stats, error) {
	var st stats.Stats
	if err := c.getJSON(ctx, "/stats", nil, &st); err != nil {
		return nil, err
	}

	return &st, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v interface{}) error {
	resp, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

// get returns the response only for 2xx statuses; the caller closes it.
func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	target := c.Addr + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Status == "" {
			apiErr.Status = http.StatusText(resp.StatusCode)
		}

		return nil, apiErr
	}

	return resp, nil
}
