package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"golang.org/x/oauth2"
)

const (
	geniusAuthURL  = "https://api.genius.com/oauth/authorize"
	geniusTokenURL = "https://api.genius.com/oauth/token"
)

// GeniusEndpoint is the Genius OAuth2 endpoint. Genius reads client credentials from the form body.
var GeniusEndpoint = oauth2.Endpoint{
	AuthURL:   geniusAuthURL,
	TokenURL:  geniusTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// GeniusAuth implements [Provider] for Genius.
type GeniusAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// GeniusOption configures a [GeniusAuth].
type GeniusOption func(*GeniusAuth)

// WithGeniusEndpoint overrides the OAuth endpoint.
func WithGeniusEndpoint(e oauth2.Endpoint) GeniusOption {
	return func(g *GeniusAuth) { g.config.Endpoint = e }
}

// WithGeniusHTTPClient sets the client used for the token exchange.
func WithGeniusHTTPClient(c *http.Client) GeniusOption {
	return func(g *GeniusAuth) { g.httpClient = c }
}

// NewGeniusAuth creates a [GeniusAuth] from configured credentials.
func NewGeniusAuth(creds shared.OAuthConfig, opts ...GeniusOption) (*GeniusAuth, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("%w: genius client_id and client_secret", shared.ErrMissingCredentials)
	}

	g := &GeniusAuth{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       []string{"me"},
			Endpoint:     GeniusEndpoint,
		},
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GeniusAuth) Platform() models.Platform { return models.PlatformGenius }

func (g *GeniusAuth) AuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades code for an access token.
//
// The redirect_uri sent to Genius is derived from callbackURL (query stripped) so it matches
// the URL the user was actually sent to; the configured redirect URI is used when it is empty.
func (g *GeniusAuth) Exchange(ctx context.Context, code, callbackURL string) (string, error) {
	var opts []oauth2.AuthCodeOption
	if redirect := redirectBase(callbackURL); redirect != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirect))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	token, err := g.config.Exchange(ctx, code, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: genius: %v", shared.ErrProviderError, err)
	}
	return token.AccessToken, nil
}

func redirectBase(callbackURL string) string {
	if callbackURL == "" {
		return ""
	}
	u, err := url.Parse(callbackURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
