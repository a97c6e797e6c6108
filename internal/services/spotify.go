package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// SpotifyAuth implements [Provider] for Spotify.
type SpotifyAuth struct {
	auth       *spotifyauth.Authenticator
	httpClient *http.Client
}

// NewSpotifyAuth creates a [SpotifyAuth] from configured credentials. A nil client uses [http.DefaultClient].
func NewSpotifyAuth(creds shared.OAuthConfig, client *http.Client) (*SpotifyAuth, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserTopRead,
			spotifyauth.ScopeUserReadRecentlyPlayed,
		),
	)

	return &SpotifyAuth{auth: auth, httpClient: client}, nil
}

func (s *SpotifyAuth) Platform() models.Platform { return models.PlatformSpotify }

func (s *SpotifyAuth) AuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// Exchange trades code for tokens and returns the refresh token.
// Spotify validates redirect_uri against the configured one, so callbackURL is not used.
func (s *SpotifyAuth) Exchange(ctx context.Context, code, _ string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: spotify: %v", shared.ErrProviderError, err)
	}
	if token.RefreshToken == "" {
		return "", fmt.Errorf("%w: spotify returned no refresh token", shared.ErrProviderError)
	}
	return token.RefreshToken, nil
}
