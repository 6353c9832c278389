package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/closetmind/closetmind-backend/internal/websearch/types"
)

// Provider defines the interface for search providers
type Provider interface {
	// Search executes a search query
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)

	// LensSearch executes a reverse image search
	LensSearch(ctx context.Context, req *types.LensRequest) (*types.SearchResponse, error)

	// GetID returns the provider ID
	GetID() types.ProviderID

	// GetName returns the provider name
	GetName() string

	// Validate validates the provider configuration
	Validate() error
}

// BaseProvider provides common functionality for all providers
type BaseProvider struct {
	config     *types.ProviderConfig
	httpClient *http.Client
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(config *types.ProviderConfig) *BaseProvider {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &BaseProvider{
		config:     config,
		httpClient: httpClient,
	}
}

// GetID returns the provider ID
func (b *BaseProvider) GetID() types.ProviderID {
	return b.config.ID
}

// GetName returns the provider name
func (b *BaseProvider) GetName() string {
	return b.config.Name
}

// GetConfig returns the provider configuration
func (b *BaseProvider) GetConfig() *types.ProviderConfig {
	return b.config
}

// GetHTTPClient returns the HTTP client
func (b *BaseProvider) GetHTTPClient() *http.Client {
	return b.httpClient
}

// BuildDefaultHeaders builds default HTTP headers
func (b *BaseProvider) BuildDefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

// DoRequest executes an HTTP request. The lookup is a single attempt:
// a transport failure surfaces immediately, it is never retried.
func (b *BaseProvider) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Validate validates the provider configuration
func (b *BaseProvider) Validate() error {
	return b.config.Validate()
}
