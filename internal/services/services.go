package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/geniust/internal/models"
	"github.com/hashicorp/go-retryablehttp"
)

// Provider is an OAuth provider a chat can link.
type Provider interface {
	// Platform identifies the provider in state strings and storage.
	Platform() models.Platform

	// AuthURL returns the URL the user visits to grant access. state is echoed back on the callback.
	AuthURL(state string) string

	// Exchange trades an authorization code for the token to persist.
	// callbackURL is the full URL the provider redirected to.
	Exchange(ctx context.Context, code, callbackURL string) (string, error)
}

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// NewHTTPClient returns an [http.Client] that retries transient failures.
// Retries are logged at warn level when logger is not nil.
func NewHTTPClient(logger *log.Logger, timeout time.Duration) *http.Client {
	return newRetryingClient(logger, timeout, retryablehttp.DefaultRetryPolicy)
}

// NewExchangeClient returns an [http.Client] for OAuth code exchanges.
// A code is single use, so only requests that never reached the provider are retried.
func NewExchangeClient(logger *log.Logger, timeout time.Duration) *http.Client {
	return newRetryingClient(logger, timeout, retryOnDialError)
}

func newRetryingClient(logger *log.Logger, timeout time.Duration, policy retryablehttp.CheckRetry) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.HTTPClient.Timeout = timeout
	client.CheckRetry = policy

	if logger != nil {
		client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				logger.Warn("retrying request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt)
			}
		}
	}

	return client.StandardClient()
}

// retryOnDialError retries only failed connection attempts. Any response, including a 5xx,
// is returned as is.
func retryOnDialError(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial", nil
}
