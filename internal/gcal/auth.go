package gcal

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"

	"github.com/omriShneor/alfred_booking/internal/auth"
)

const (
	oauthCallbackPort = 8080
	callbackPath      = "/oauth/callback"
)

// AuthMode describes how the client obtained calendar access.
type AuthMode string

const (
	AuthModeServiceAccount AuthMode = "service_account"
	AuthModeOAuth          AuthMode = "oauth"
)

// OAuthScopes contains only Calendar scopes. Options.ExtraScopes adds to them.
var OAuthScopes = []string{
	calendar.CalendarScope,
}

func scopesWith(extra []string) []string {
	scopes := append([]string{}, OAuthScopes...)
	for _, s := range extra {
		if s != "" && !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

type credentials struct {
	mode  AuthMode
	jwt   *jwt.Config
	oauth *oauth2.Config
}

// oauthCallbackURL returns the OAuth callback URL, using the public base URL if set
func oauthCallbackURL(baseURL string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + callbackPath
	}
	return fmt.Sprintf("http://localhost:%d%s", oauthCallbackPort, callbackPath)
}

// loadCredentials reads credentials from inline JSON, a path given in place of JSON, or the credentials file.
func loadCredentials(credJSON, credentialsFile string, scopes []string) (*credentials, error) {
	var data []byte

	switch {
	case strings.HasPrefix(strings.TrimSpace(credJSON), "{"):
		data = []byte(credJSON)
	case credJSON != "":
		b, err := os.ReadFile(credJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials from %s: %w", credJSON, err)
		}
		data = b
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials from %s: %w", credentialsFile, err)
		}
		data = b
	default:
		return nil, fmt.Errorf("no credentials found - provide credentials.json or set GOOGLE_CREDENTIALS_JSON")
	}

	return parseCredentials(data, scopes)
}

func parseCredentials(data []byte, scopes []string) (*credentials, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid credentials json: %w", err)
	}

	if probe.Type == "service_account" {
		cfg, err := google.JWTConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid service account credentials: %w", err)
		}
		return &credentials{mode: AuthModeServiceAccount, jwt: cfg}, nil
	}

	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth client credentials: %w", err)
	}
	return &credentials{mode: AuthModeOAuth, oauth: cfg}, nil
}

// tokenStore keeps the OAuth user token on disk, encrypted when an encryptor is set.
type tokenStore struct {
	path string
	enc  *auth.Encryptor
}

func (ts tokenStore) load() (*oauth2.Token, error) {
	if ts.path == "" {
		return nil, fmt.Errorf("no token file configured")
	}
	data, err := os.ReadFile(ts.path)
	if err != nil {
		return nil, err
	}

	raw := string(data)
	if auth.IsEncrypted(raw) {
		if ts.enc == nil {
			return nil, fmt.Errorf("token file is encrypted but no encryption key is set")
		}
		if raw, err = ts.enc.DecryptString(raw); err != nil {
			return nil, fmt.Errorf("failed to decrypt token file: %w", err)
		}
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &token, nil
}

func (ts tokenStore) save(token *oauth2.Token) error {
	if ts.path == "" {
		return fmt.Errorf("no token file configured")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	if ts.enc != nil {
		sealed, err := ts.enc.EncryptString(string(data))
		if err != nil {
			return fmt.Errorf("failed to encrypt token: %w", err)
		}
		data = []byte(sealed)
	}
	return os.WriteFile(ts.path, data, 0600)
}
