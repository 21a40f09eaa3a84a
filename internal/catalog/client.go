package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the recommendation service API root.
	DefaultBaseURL = "http://developer.echonest.com/api/v4"
	// DefaultPageSize is how many catalogs are requested per list call.
	DefaultPageSize = 100
)

// APIError is returned when the service answers with an HTTP error or a
// non-zero status code.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api error (http %d, code %d): %s", e.HTTPStatus, e.Code, e.Message)
}

// Client provides access to the catalog endpoints of the recommendation service.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a new catalog API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetPageSize sets the number of catalogs requested per list call.
func (c *Client) SetPageSize(n int) {
	if n > 0 {
		c.pageSize = n
	}
}

// ListCatalogs returns every catalog owned by the API key. Paging stops once
// the reported total is collected, or, when the service omits the total, at
// the first empty or short page.
func (c *Client) ListCatalogs(ctx context.Context) ([]Catalog, error) {
	var all []Catalog
	start := 0
	for {
		query := url.Values{}
		query.Set("start", strconv.Itoa(start))
		query.Set("results", strconv.Itoa(c.pageSize))

		var resp listResponse
		if err := c.get(ctx, "/catalog/list", query, &resp); err != nil {
			return nil, err
		}

		page := resp.Response.Catalogs
		all = append(all, page...)
		start += len(page)
		if len(page) == 0 {
			return all, nil
		}
		if total := resp.Response.Total; total > 0 {
			if start >= total {
				return all, nil
			}
		} else if len(page) < c.pageSize {
			return all, nil
		}
	}
}

// DeleteCatalog deletes a single catalog by id.
func (c *Client) DeleteCatalog(ctx context.Context, id string) error {
	form := url.Values{}
	form.Set("id", id)

	return c.post(ctx, "/catalog/delete", form, nil)
}

// Helper methods

func (c *Client) withKey(values url.Values) url.Values {
	if values == nil {
		values = url.Values{}
	}
	values.Set("api_key", c.apiKey)
	values.Set("format", "json")
	return values
}

func (c *Client) post(ctx context.Context, path string, form url.Values, dest any) error {
	body := c.withKey(form).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	endpoint := c.baseURL + path + "?" + c.withKey(query).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var status statusResponse
	statusErr := json.Unmarshal(body, &status)

	// Handle error responses
	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		if statusErr == nil && status.Response.Status.Message != "" {
			apiErr.Code = status.Response.Status.Code
			apiErr.Message = status.Response.Status.Message
		}
		return apiErr
	}
	if statusErr != nil {
		return fmt.Errorf("unmarshal response: %w", statusErr)
	}
	if s := status.Response.Status; s.Code != StatusSuccess {
		return &APIError{HTTPStatus: resp.StatusCode, Code: s.Code, Message: s.Message}
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
