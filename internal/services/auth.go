package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTokenURL is the client-credentials token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// tokenLeeway refreshes tokens slightly before they expire.
	tokenLeeway = 30 * time.Second
)

// TokenProvider supplies bearer tokens for API requests.
type TokenProvider interface {
	// Token returns a valid access token, fetching one if needed.
	Token(ctx context.Context) (string, error)
	// Invalidate drops any cached token so the next call fetches a new one.
	Invalidate()
}

// AuthConfig configures [ClientCredentials].
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string        // defaults to [DefaultTokenURL]
	HTTPClient   *http.Client  // used for the token exchange; defaults to [http.DefaultClient]
	Timeout      time.Duration // bounds one exchange; defaults to [DefaultTimeout]
	Logger       *log.Logger
	Metrics      *Metrics
}

// ClientCredentials obtains and caches an application token with the OAuth2 client-credentials grant.
//
// The token is reused until shortly before expiry. Concurrent callers that find no valid token share a single
// exchange; each caller can still give up early through its own context.
type ClientCredentials struct {
	config  *clientcredentials.Config
	client  *http.Client
	timeout time.Duration
	logger  *log.Logger
	metrics *Metrics
	now     func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
	group singleflight.Group
}

// NewClientCredentials creates a token provider. Returns [shared.ErrMissingCredentials] if either credential is empty.
func NewClientCredentials(cfg AuthConfig) (*ClientCredentials, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewDiscardLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &ClientCredentials{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client:  cfg.HTTPClient,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}, nil
}

// Token returns the cached token or performs one shared exchange.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	if tok := c.cached(); tok != "" {
		return tok, nil
	}

	ch := c.group.DoChan("token", func() (any, error) {
		if tok := c.cached(); tok != "" {
			return tok, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: waiting for access token", shared.ErrTimeout)
		}
		return "", ctx.Err()
	}
}

// Invalidate drops the cached token.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

func (c *ClientCredentials) cached() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil || c.token.AccessToken == "" {
		return ""
	}
	if !c.token.Expiry.IsZero() && !c.now().Add(tokenLeeway).Before(c.token.Expiry) {
		return ""
	}
	return c.token.AccessToken
}

// refresh runs detached from the first caller's cancellation so that other waiters still get a token.
func (c *ClientCredentials) refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	start := c.now()
	tok, err := c.config.Token(ctx)
	c.metrics.observeToken(err)
	if err != nil {
		return "", c.mapError(err)
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	c.logger.Info("fetched access token", "expires", tok.Expiry.Format(time.RFC3339), "took", c.now().Sub(start))
	return tok.AccessToken, nil
}

func (c *ClientCredentials) mapError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &shared.UpstreamError{Endpoint: "token", StatusCode: status, Body: string(re.Body)}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: token exchange", shared.ErrTimeout)
	}
	return fmt.Errorf("token exchange failed: %w", err)
}
