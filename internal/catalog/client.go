package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-browser/internal/domain"
)

var (
	// ErrUpstream is returned when the backend cannot be reached or answers with a non-OK status.
	ErrUpstream = errors.New("catalog: upstream request failed")
	// ErrMalformedResponse is returned when the backend payload cannot be decoded.
	ErrMalformedResponse = errors.New("catalog: malformed response")
)

const maxResponseBody = 8 << 20 // 8 MiB

// Hints carries optional server-side sort/filter parameters. The backend may ignore them.
// Search requests always ask for k=0 so no server-side cap trims the result set.
type Hints struct {
	SortBy     string
	Order      string
	DateFilter string
}

// Client defines the contract for querying the catalog search backend.
type Client interface {
	SearchText(ctx context.Context, query string, hints Hints) ([]domain.Movie, error)
	SearchTag(ctx context.Context, tag string, hints Hints) ([]domain.Movie, error)
	SearchRelevancy(ctx context.Context, query string, isTag bool) ([]domain.Movie, error)
	CommonTags(ctx context.Context) ([]string, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog client. A zero timeout leaves requests unbounded.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("catalog url must be http or https, got %q", baseURL)
	}
	dialTimeout := timeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   dialTimeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// SearchText runs a free-text search against /search_disney_movie.
func (c *HTTPClient) SearchText(ctx context.Context, query string, hints Hints) ([]domain.Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	hints.apply(params, true)
	return c.fetchMovies(ctx, "/search_disney_movie", params)
}

// SearchTag lists movies carrying tag via /search_by_tag.
func (c *HTTPClient) SearchTag(ctx context.Context, tag string, hints Hints) ([]domain.Movie, error) {
	params := url.Values{}
	params.Set("tag", tag)
	hints.apply(params, false)
	return c.fetchMovies(ctx, "/search_by_tag", params)
}

// SearchRelevancy queries /search_relevancy. An empty non-tag query lists the whole catalog.
func (c *HTTPClient) SearchRelevancy(ctx context.Context, query string, isTag bool) ([]domain.Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("is_tag", strconv.FormatBool(isTag))
	params.Set("k", "0")
	return c.fetchMovies(ctx, "/search_relevancy", params)
}

// CommonTags retrieves the frequently used tags from /fetch_common_tags.
func (c *HTTPClient) CommonTags(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/fetch_common_tags", nil)
	if err != nil {
		return nil, err
	}
	var payload tagsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode tags: %v", ErrMalformedResponse, err)
	}
	if payload.Tags == nil {
		return nil, fmt.Errorf("%w: tags field missing", ErrMalformedResponse)
	}
	tags := make([]string, 0, len(*payload.Tags))
	for _, tag := range *payload.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (h Hints) apply(params url.Values, withOrder bool) {
	params.Set("k", "0")
	if h.SortBy != "" {
		params.Set("sort_by", h.SortBy)
	}
	if withOrder && h.Order != "" {
		params.Set("order", h.Order)
	}
	if h.DateFilter != "" {
		params.Set("date_filter", h.DateFilter)
	}
}

func (c *HTTPClient) fetchMovies(ctx context.Context, path string, params url.Values) ([]domain.Movie, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return decodeMovies(body)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	rel := &url.URL{Path: c.baseURL.Path + path}
	if params != nil {
		rel.RawQuery = params.Encode()
	}
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("catalog: unexpected status %d for %s (request %s)", resp.StatusCode, path, requestID)
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstream, path, err)
	}
	return body, nil
}

type tagsResponse struct {
	Tags *[]string `json:"tags"`
}

// notFoundRow is the placeholder row the backend emits instead of an empty array.
type notFoundRow struct {
	Result *string `json:"result"`
}

func decodeMovies(body []byte) ([]domain.Movie, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: expected array: %v", ErrMalformedResponse, err)
	}

	movies := make([]domain.Movie, 0, len(rows))
	for i, raw := range rows {
		var marker notFoundRow
		if err := json.Unmarshal(raw, &marker); err == nil && marker.Result != nil {
			continue
		}
		var movie domain.Movie
		if err := json.Unmarshal(raw, &movie); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedResponse, i, err)
		}
		if strings.TrimSpace(movie.Title) == "" {
			return nil, fmt.Errorf("%w: row %d has no title", ErrMalformedResponse, i)
		}
		if movie.ReleaseYear == 0 && !movie.ReleaseDate.IsZero() {
			movie.ReleaseYear = movie.ReleaseDate.Year()
		}
		movies = append(movies, movie)
	}
	return movies, nil
}
