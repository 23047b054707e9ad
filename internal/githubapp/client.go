// Package githubapp talks to the GitHub REST API as an app installation.
package githubapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	ghinstallation "github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/core/config"
)

// ClientFactory hands out clients authenticated for one installation.
type ClientFactory interface {
	Installation(ctx context.Context, installationID int64) (*github.Client, error)
}

type appClientFactory struct {
	appID      int64
	privateKey []byte
	baseURL    string
	timeout    time.Duration
	transport  http.RoundTripper

	mu      sync.Mutex
	clients map[int64]*github.Client
}

// NewClientFactory builds installation clients from the app credentials.
// Clients are cached per installation so ghinstallation can reuse its token.
func NewClientFactory(cfg config.GitHubConfig) (ClientFactory, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("github app credentials are not configured")
	}
	return &appClientFactory{
		appID:      cfg.AppID,
		privateKey: []byte(cfg.PrivateKey),
		baseURL:    cfg.BaseURL,
		timeout:    cfg.RequestTimeout,
		transport:  http.DefaultTransport,
		clients:    make(map[int64]*github.Client),
	}, nil
}

func (f *appClientFactory) Installation(ctx context.Context, installationID int64) (*github.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[installationID]; ok {
		return client, nil
	}

	tr, err := ghinstallation.New(f.transport, f.appID, installationID, f.privateKey)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if f.baseURL != "" {
		tr.BaseURL = strings.TrimSuffix(f.baseURL, "/")
	}

	client := github.NewClient(&http.Client{Transport: tr, Timeout: f.timeout})
	if f.baseURL != "" {
		if err := SetBaseURL(client, f.baseURL); err != nil {
			return nil, err
		}
	}

	f.clients[installationID] = client
	return client, nil
}

// SetBaseURL points client at a different API root, e.g. GitHub Enterprise or a test server.
func SetBaseURL(client *github.Client, baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parsing github base url: %w", err)
	}
	client.BaseURL = u
	return nil
}

type staticClientFactory struct {
	client *github.Client
}

// NewStaticClientFactory returns the same client for every installation.
func NewStaticClientFactory(client *github.Client) ClientFactory {
	return &staticClientFactory{client: client}
}

func (f *staticClientFactory) Installation(ctx context.Context, installationID int64) (*github.Client, error) {
	return f.client, nil
}
