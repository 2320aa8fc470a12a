package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// HTTPClient implements Client using the trackline HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Routes ---

func (c *HTTPClient) CreateRoute(ctx context.Context, req model.RouteRequest) (*model.Route, error) {
	var route model.Route
	if err := c.doJSON(ctx, http.MethodPost, "/v1/routes", req, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *HTTPClient) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	var route model.Route
	if err := c.doJSON(ctx, http.MethodGet, "/v1/routes/"+url.PathEscape(id), nil, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *HTTPClient) ListRoutes(ctx context.Context, from, to string) ([]*model.Route, error) {
	var resp routeList
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/routes", "from", from, "to", to), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Routes, nil
}

// --- Statistics ---

func (c *HTTPClient) DistanceStats(ctx context.Context, req StatsRequest) (*model.DistanceReport, error) {
	path := withQuery("/v1/stats/distances", "from", req.From, "to", req.To, "groupBy", req.GroupBy)
	var report model.DistanceReport
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// --- Catalog ---

func (c *HTTPClient) ListStations(ctx context.Context, search string) ([]*model.Station, error) {
	var resp stationList
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/stations", "search", search), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stations, nil
}

func (c *HTTPClient) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	var st model.Station
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stations/"+strconv.FormatInt(id, 10), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) GetStationByShortName(ctx context.Context, shortName string) (*model.Station, error) {
	var st model.Station
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stations/p/"+url.PathEscape(shortName), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) ListLinks(ctx context.Context, filter model.LinkFilter) ([]*model.Link, error) {
	path := withQuery("/v1/distances", "network", filter.Network, "from", filter.From, "to", filter.To)
	var resp linkList
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Links, nil
}

func (c *HTTPClient) DistanceBetween(ctx context.Context, from, to string) (*model.Link, error) {
	var link model.Link
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/distance-between", "from", from, "to", to), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- internal helpers ---

// APIError represents an error response from the server. Fields is set for
// request validation failures.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []model.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// withQuery appends the non-empty key/value pairs in kv to path.
func withQuery(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string             `json:"error"`
			Fields []model.FieldError `json:"fields"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Fields: errResp.Fields}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
