// Catalog API implementation of [Searcher]
//
// Response shapes follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/endpoint"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/query"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the root of the catalog API.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultTimeout bounds one API request when none is configured.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 4096
)

// ClientConfig configures a [Client]. Zero values select defaults.
type ClientConfig struct {
	BaseURL           string
	ProviderDomain    string  // domain that marks input as a resource link
	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables rate limiting
	HTTPClient        *http.Client
	Titles            *query.TitleFetcher // nil disables page title resolution
	Cache             *ResponseCache      // nil disables caching
	Metrics           *Metrics
	Logger            *log.Logger
}

// Client searches and looks up catalog entities.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       TokenProvider
	normalizer *query.Normalizer
	limiter    *rate.Limiter
	timeout    time.Duration
	cache      *ResponseCache
	metrics    *Metrics
	logger     *log.Logger
}

// NewClient creates a Client that authenticates with auth.
func NewClient(auth TokenProvider, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewDiscardLogger()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		auth:       auth,
		normalizer: query.NewNormalizer(cfg.ProviderDomain, cfg.Titles, cfg.Logger),
		limiter:    limiter,
		timeout:    cfg.Timeout,
		cache:      cfg.Cache,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// NewFromConfig wires a Client and its credential provider from application config.
//
// reg may be nil, in which case metrics are not collected.
func NewFromConfig(cfg *shared.Config, logger *log.Logger, reg prometheus.Registerer) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", shared.ErrMissingConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("%w: set credentials.spotify in the config file or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET", shared.ErrMissingCredentials)
	}

	var metrics *Metrics
	if reg != nil {
		metrics = NewMetrics(reg)
	}

	httpClient := &http.Client{}
	auth, err := NewClientCredentials(AuthConfig{
		ClientID:     cfg.Credentials.Spotify.ClientID,
		ClientSecret: cfg.Credentials.Spotify.ClientSecret,
		TokenURL:     cfg.API.TokenURL,
		HTTPClient:   httpClient,
		Timeout:      cfg.API.Timeout,
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}

	var cache *ResponseCache
	if cfg.Cache.Enabled {
		cache = NewResponseCache(cfg.Cache.Size, cfg.Cache.TTL)
	}

	return NewClient(auth, ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		ProviderDomain:    cfg.API.ProviderDomain,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		HTTPClient:        httpClient,
		Titles:            query.NewTitleFetcher(httpClient, cfg.API.TitleTimeout, cfg.API.TitleBrand),
		Cache:             cache,
		Metrics:           metrics,
		Logger:            logger,
	}), nil
}

// Plan resolves input into the descriptor and request target a search would use, without calling the API.
//
// Title resolution still fetches the track page when opts.ResolveTitles is set.
func (c *Client) Plan(ctx context.Context, input string, opts SearchOptions) (query.Descriptor, endpoint.Target, error) {
	if err := opts.endpointOptions().Validate(); err != nil {
		return query.Descriptor{}, endpoint.Target{}, err
	}

	d, err := c.normalizer.Normalize(input)
	if err != nil {
		return query.Descriptor{}, endpoint.Target{}, err
	}

	if opts.ResolveTitles && d.Kind == query.Lookup && d.EntityType == models.TypeTrack {
		d, err = c.normalizer.Resolve(ctx, input, true)
		if err != nil {
			return query.Descriptor{}, endpoint.Target{}, err
		}
		c.metrics.observeTitle(d.Kind == query.Keywords)
	}

	if d.Kind == query.Keywords {
		d = query.NewKeywords(d.Text, opts.Filters, opts.Types)
		if len(endpoint.Terms(d)) == 0 {
			return query.Descriptor{}, endpoint.Target{}, fmt.Errorf("%w: search needs keywords or filters", shared.ErrMissingArgument)
		}
	}

	target, err := endpoint.Build(d, opts.endpointOptions())
	if err != nil {
		return query.Descriptor{}, endpoint.Target{}, err
	}
	return d, target, nil
}

// Search runs a keyword search or, for resource links, a direct lookup.
func (c *Client) Search(ctx context.Context, input string, opts SearchOptions) (*results.ResultSet, error) {
	d, target, err := c.Plan(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, d, target)
}

// Lookup fetches one entity by kind and identifier.
func (c *Client) Lookup(ctx context.Context, kind models.EntityType, id string, opts SearchOptions) (*results.ResultSet, error) {
	d, err := query.NewLookup(kind, id)
	if err != nil {
		return nil, err
	}

	target, err := endpoint.Build(d, opts.endpointOptions())
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, d, target)
}

func (c *Client) fetch(ctx context.Context, d query.Descriptor, target endpoint.Target) (*results.ResultSet, error) {
	body, err := c.doRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	if d.Kind == query.Lookup {
		return results.MaterializeLookup(d.EntityType, body)
	}
	return results.Materialize(body)
}

// doRequest performs an authenticated GET for target and returns the response body.
func (c *Client) doRequest(ctx context.Context, target endpoint.Target) ([]byte, error) {
	key := target.String()
	if c.cache != nil {
		body, ok := c.cache.Get(key)
		c.metrics.observeCache(ok)
		if ok {
			c.logger.Debug("cache hit", "target", key)
			return body, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.contextError(err, key)
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	logger := shared.WithLogger(c.logger, "request_id", shared.GenerateID(), "target", key)
	logger.Debug("sending request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(endpointLabel(target), "error", time.Since(start))
		return nil, c.contextError(err, key)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observeRequest(endpointLabel(target), strconv.Itoa(resp.StatusCode), time.Since(start))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized {
			c.auth.Invalidate()
		}
		logger.Debug("request failed", "status", resp.StatusCode)
		return nil, &shared.UpstreamError{Endpoint: target.Path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observeRequest(endpointLabel(target), "error", time.Since(start))
		return nil, c.contextError(err, key)
	}
	c.metrics.observeRequest(endpointLabel(target), strconv.Itoa(resp.StatusCode), time.Since(start))
	logger.Debug("request complete", "status", resp.StatusCode, "bytes", len(body), "took", time.Since(start))

	if c.cache != nil {
		c.cache.Add(key, body)
	}
	return body, nil
}

// endpointLabel keeps metric cardinality bounded by dropping lookup identifiers.
func endpointLabel(target endpoint.Target) string {
	name, _, _ := strings.Cut(target.Path, "/")
	return name
}

func (c *Client) contextError(err error, target string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", shared.ErrTimeout, target)
	}
	return fmt.Errorf("request failed: %w", err)
}
