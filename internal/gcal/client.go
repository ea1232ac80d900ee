package gcal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/omriShneor/alfred_booking/internal/auth"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// Options configures a Client.
type Options struct {
	// CredentialsJSON holds credentials content or a path to them.
	CredentialsJSON string
	CredentialsFile string
	TokenFile       string
	CalendarID      string
	BaseURL         string
	Timezone        string
	Timeout         time.Duration
	Logger          *slog.Logger

	// Encryptor seals the stored OAuth token. Nil stores it as plain JSON.
	Encryptor *auth.Encryptor

	// ExtraScopes are requested alongside the Calendar scope, e.g. gmail.send.
	ExtraScopes []string
}

// Client wraps the Google Calendar API client for a single calendar.
type Client struct {
	mu         sync.RWMutex
	service    *calendar.Service
	config     *oauth2.Config
	token      *oauth2.Token
	tokens     tokenStore
	mode       AuthMode
	calendarID string
	timezone   string
	loc        *time.Location
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a calendar client. A service account is ready immediately; an OAuth
// client becomes ready once a stored token is loaded or ExchangeCode succeeds.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	creds, err := loadCredentials(opts.CredentialsJSON, opts.CredentialsFile, scopesWith(opts.ExtraScopes))
	if err != nil {
		return nil, fmt.Errorf("failed to load google credentials: %w", err)
	}

	client := newClient(opts)
	client.mode = creds.mode

	if creds.mode == AuthModeServiceAccount {
		if err := client.initService(ctx, creds.jwt.Client(ctx)); err != nil {
			return nil, err
		}
		return client, nil
	}

	creds.oauth.RedirectURL = oauthCallbackURL(opts.BaseURL)
	client.config = creds.oauth

	// Try to load existing token and initialize service
	token, err := client.tokens.load()
	if err == nil {
		client.token = token
		if err := client.tryInitService(ctx); err != nil {
			// Token might be expired, but that's OK - user will need to re-auth
			client.logger.Warn("could not initialize calendar service with stored token", "error", err)
		}
	} else if opts.TokenFile != "" && !errors.Is(err, os.ErrNotExist) {
		client.logger.Warn("could not load stored token", "error", err)
	}

	return client, nil
}

// NewClientWithService wraps an existing calendar service, used by tests and custom endpoints.
func NewClientWithService(service *calendar.Service, opts Options) *Client {
	client := newClient(opts)
	client.service = service
	return client
}

func newClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	calendarID := opts.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	timezone := opts.Timezone
	if timezone == "" {
		timezone = timeutil.DefaultTimezone
	}
	loc, _ := timeutil.ResolveLocation(timezone)

	return &Client{
		tokens:     tokenStore{path: opts.TokenFile, enc: opts.Encryptor},
		mode:       AuthModeOAuth,
		calendarID: calendarID,
		timezone:   timezone,
		loc:        loc,
		timeout:    opts.Timeout,
		logger:     logger.With("component", "gcal"),
	}
}

// tryInitService attempts to initialize the service, refreshing the token if needed
func (c *Client) tryInitService(ctx context.Context) error {
	if c.token == nil {
		return fmt.Errorf("no token available")
	}

	// If token is expired but we have a refresh token, try to refresh
	if !c.token.Valid() && c.token.RefreshToken != "" {
		tokenSource := c.config.TokenSource(ctx, c.token)
		newToken, err := tokenSource.Token()
		if err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
		c.token = newToken
		if err := c.tokens.save(newToken); err != nil {
			c.logger.Warn("could not save refreshed token", "error", err)
		}
	}

	return c.initService(ctx, c.config.Client(context.Background(), c.token))
}

// initService initializes the Calendar service over an authorized HTTP client
func (c *Client) initService(ctx context.Context, httpClient *http.Client) error {
	if c.timeout > 0 {
		httpClient.Timeout = c.timeout
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}

	c.mu.Lock()
	c.service = service
	c.mu.Unlock()
	return nil
}

// IsAuthenticated returns true if the client is authenticated
func (c *Client) IsAuthenticated() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.service != nil
}

// Mode reports how the client authenticates.
func (c *Client) Mode() AuthMode {
	return c.mode
}

// CalendarID returns the calendar this client operates on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// GetAuthURL returns the OAuth authorization URL
func (c *Client) GetAuthURL(state string) (string, error) {
	if c.config == nil {
		return "", fmt.Errorf("client is not configured for interactive oauth")
	}
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// ExchangeCode exchanges an authorization code for a token and saves it
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	if c.config == nil {
		return fmt.Errorf("client is not configured for interactive oauth")
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if err := c.tokens.save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return c.initService(ctx, c.config.Client(context.Background(), token))
}

func (c *Client) svc() (*calendar.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}
	return c.service, nil
}

// HasUserToken reports whether an interactive OAuth token is available.
func (c *Client) HasUserToken() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config != nil && c.token != nil
}

// OAuthHTTPClient returns an HTTP client authorized with the stored user token.
// Other Google APIs granted through ExtraScopes share it.
func (c *Client) OAuthHTTPClient(ctx context.Context) (*http.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.config == nil || c.token == nil {
		return nil, fmt.Errorf("no oauth token available")
	}
	httpClient := c.config.Client(ctx, c.token)
	if c.timeout > 0 {
		httpClient.Timeout = c.timeout
	}
	return httpClient, nil
}
