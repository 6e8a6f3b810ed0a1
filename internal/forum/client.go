package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "topics/1.0"

	retryWaitMin = 250 * time.Millisecond
	retryWaitMax = 2 * time.Second

	// Bodies of error responses are only logged, never parsed
	maxErrorBody = 512
)

// Endpoint labels used for logs and metrics
const (
	endpointTopics = "/api/v3/topics"
	endpointNode   = "/api/v3/nodes/:id"
	endpointNodes  = "/api/v3/nodes"
)

// Ensure Client implements domain.Source at compile time.
var _ domain.Source = (*Client)(nil)

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int // Connection-level retries; HTTP statuses are never retried
	UserAgent string
	Logger    zerolog.Logger
}

// Client talks to the forum HTTP API. It implements domain.TopicRepository
// and domain.NodeRepository.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

// NewClient creates a new forum API client
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = retryWaitMin
	retryClient.RetryWaitMax = retryWaitMax
	retryClient.CheckRetry = retryConnectionErrors
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: opts.Logger}

	return &Client{
		baseURL:   base,
		http:      retryClient.StandardClient(),
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}, nil
}

// retryConnectionErrors retries only when no response was received. Any
// response, including 5xx, is handed back so its status can be classified.
func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// ListTopics returns one page of topics
func (c *Client) ListTopics(ctx context.Context, filter domain.Filter, offset, limit int) ([]domain.Topic, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", string(filter.Type))
	}
	if filter.HasNode() {
		query.Set("node_id", strconv.FormatInt(filter.NodeID, 10))
	}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var payload TopicsResponse
	rel := &url.URL{Path: "/api/v3/topics.json", RawQuery: query.Encode()}
	if err := c.do(ctx, endpointTopics, rel, &payload); err != nil {
		return nil, err
	}

	// A page is never longer than requested
	if len(payload.Topics) > limit {
		payload.Topics = payload.Topics[:limit]
	}
	return MapTopics(payload.Topics), nil
}

// GetNode returns a single node
func (c *Client) GetNode(ctx context.Context, id int64) (*domain.Node, error) {
	if id <= 0 {
		return nil, fmt.Errorf("node id must be positive, got %d", id)
	}

	var payload NodeResponse
	rel := &url.URL{Path: fmt.Sprintf("/api/v3/nodes/%d.json", id)}
	if err := c.do(ctx, endpointNode, rel, &payload); err != nil {
		return nil, err
	}

	node := MapNode(payload.Node)
	return &node, nil
}

// ListNodes returns every node
func (c *Client) ListNodes(ctx context.Context) ([]domain.Node, error) {
	var payload NodesResponse
	rel := &url.URL{Path: "/api/v3/nodes.json"}
	if err := c.do(ctx, endpointNodes, rel, &payload); err != nil {
		return nil, err
	}
	return MapNodes(payload.Nodes), nil
}

// do performs a GET request and decodes a JSON body into dest.
//
// Errors follow the repository contract: transport failures wrap
// domain.ErrServerOffline, non-2xx responses are *domain.StatusError.
func (c *Client) do(ctx context.Context, endpoint string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	logger := c.logger.With().Str("endpoint", endpoint).Str("request_id", requestID).Logger()
	logger.Debug().Str("url", reqURL.String()).Msg("forum request")

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "error").Inc()
		logger.Error().Err(err).Msg("forum request failed")
		return fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
	}
	defer func() { _ = resp.Body.Close() }()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("body", string(body)).
			Dur("duration", time.Since(start)).
			Msg("forum request error")
		return &domain.StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		logger.Error().Err(err).Msg("JSON parse error")
		return fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidResponse, endpoint, err)
	}

	logger.Debug().Int("status_code", resp.StatusCode).Dur("duration", time.Since(start)).Msg("forum response")
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
