package notify

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Auth configures how the webhook request is authenticated. A static bearer
// token wins over client credentials; with neither, requests are anonymous.
type Auth struct {
	BearerToken  string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// clientCredentials reports whether the grant is fully configured.
func (a Auth) clientCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != "" && a.TokenURL != ""
}

// HTTPClient returns a client that attaches the configured credentials and
// gives up after timeout. Tokens from the client-credentials grant are
// cached and refreshed by the oauth2 transport.
func HTTPClient(ctx context.Context, a Auth, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var client *http.Client
	switch {
	case a.BearerToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.BearerToken, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, ts)
	case a.clientCredentials():
		cfg := &clientcredentials.Config{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			TokenURL:     a.TokenURL,
			Scopes:       a.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		client = cfg.Client(ctx)
	default:
		client = &http.Client{}
	}
	client.Timeout = timeout
	return client
}
