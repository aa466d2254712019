package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yaani/internal/ctxlog"
	"yaani/internal/expr"
	"yaani/internal/subimport"
)

// ErrBadResponse reports a NetBox answer that is not a result page.
var ErrBadResponse = errors.New("unexpected NetBox response")

// Client fetches records from the NetBox REST API.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithPageSize requests pages of n records. Zero asks NetBox for everything
// at once (limit=0), which the server still caps at its MAX_PAGE_SIZE; next
// links are followed either way.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// https://netbox.example.com/api/. An empty token sends no Authorization
// header.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type page struct {
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
	Results []map[string]any `json:"results"`
}

// Fetch returns every record of <app>/<type>/ matching the filter query
// string.
func (c *Client) Fetch(ctx context.Context, app, typ, filter string) ([]subimport.Record, error) {
	next, err := c.endpointURL(app, typ, filter)
	if err != nil {
		return nil, err
	}

	var out []subimport.Record

	seen := map[string]struct{}{}

	for next != "" {
		if _, loop := seen[next]; loop {
			return nil, fmt.Errorf("%w: next link %s points back to a fetched page", ErrBadResponse, next)
		}

		seen[next] = struct{}{}

		p, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		out = append(out, p.Results...)

		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}

	return out, nil
}

// FetchRelated fetches a collection and indexes it by the index expression.
func (c *Client) FetchRelated(ctx context.Context, app, typ, index, filter string) (subimport.RelatedIndex, error) {
	return fetchRelated(ctx, c, app, typ, index, filter)
}

func (c *Client) endpointURL(app, typ, filter string) (string, error) {
	u, err := url.Parse(c.baseURL + app + "/" + typ + "/")
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s/%s: %w", app, typ, err)
	}

	q, err := url.ParseQuery(filter)
	if err != nil {
		return "", fmt.Errorf("invalid filter %q: %w", filter, err)
	}

	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *Client) get(ctx context.Context, target string) (*page, error) {
	ctxlog.FromContext(ctx).Debug("netbox request", "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: GET %s: %s: %s", ErrBadResponse, target, resp.Status, strings.TrimSpace(string(body)))
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v (is the URL missing the /api/ suffix?)", ErrBadResponse, target, err)
	}

	return &p, nil
}

func fetchRelated(ctx context.Context, f interface {
	Fetch(context.Context, string, string, string) ([]subimport.Record, error)
}, app, typ, index, filter string,
) (subimport.RelatedIndex, error) {
	ix, err := expr.Compile(index)
	if err != nil {
		return nil, fmt.Errorf("related %s/%s: %w", app, typ, err)
	}

	records, err := f.Fetch(ctx, app, typ, filter)
	if err != nil {
		return nil, err
	}

	return subimport.IndexRecords(records, ix)
}
