package gmail

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const defaultTimeout = 30 * time.Second

// api holds what every Gmail call needs besides the access token.
type api struct {
	endpoint string
	timeout  time.Duration
}

// Option configures a Sender or a Mailbox.
type Option func(*api)

// WithEndpoint overrides the Gmail API base URL.
func WithEndpoint(endpoint string) Option {
	return func(a *api) { a.endpoint = endpoint }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *api) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func newAPI(opts []Option) api {
	a := api{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// service builds a Gmail client bound to one access token. The token is
// never refreshed here; the sweep hands over a fresh one per run.
func (a api) service(ctx context.Context, accessToken string) (*gmail.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: a.timeout}), ts)

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	return gmail.NewService(ctx, opts...)
}
