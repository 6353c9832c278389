package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/closetmind/closetmind-backend/internal/websearch/types"
)

// SerperProvider implements the Serper.dev Google Search API
type SerperProvider struct {
	*BaseProvider
}

// NewSerperProvider creates a new Serper provider
func NewSerperProvider(config *types.ProviderConfig) (Provider, error) {
	base := NewBaseProvider(config)
	return &SerperProvider{BaseProvider: base}, nil
}

// serperRequest represents a Serper API request
type serperRequest struct {
	Query    string `json:"q"`
	Location string `json:"location,omitempty"`
	Country  string `json:"gl,omitempty"`
	Language string `json:"hl,omitempty"`
	Num      int    `json:"num,omitempty"`
}

// serperLensRequest represents a Serper Lens API request
type serperLensRequest struct {
	URL      string `json:"url"`
	Country  string `json:"gl,omitempty"`
	Language string `json:"hl,omitempty"`
}

// serperResponse represents a Serper API response
type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	VisualMatches []struct {
		Title  string `json:"title"`
		Link   string `json:"link"`
		Source string `json:"source"`
	} `json:"visual_matches"`
}

// Search executes a search query using the Serper API
func (p *SerperProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	if req.Query == "" {
		return nil, types.ErrEmptyQuery
	}

	startTime := time.Now()

	location := req.Location
	if location == "" {
		location = p.config.Location
	}

	serperReq := serperRequest{
		Query:    req.Query,
		Location: location,
		Country:  p.config.Country,
		Language: p.config.Language,
		Num:      req.MaxResults,
	}

	raw, err := p.doSerperRequest(ctx, "/search", serperReq)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(raw.Organic))
	for _, r := range raw.Organic {
		results = append(results, &types.SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Content: r.Snippet,
		})
	}

	return &types.SearchResponse{
		Query:      req.Query,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(startTime).Milliseconds(),
		Provider:   p.GetID(),
	}, nil
}

// LensSearch executes a reverse image search using the Serper Lens API
func (p *SerperProvider) LensSearch(ctx context.Context, req *types.LensRequest) (*types.SearchResponse, error) {
	if req.ImageURL == "" {
		return nil, types.ErrEmptyQuery
	}

	startTime := time.Now()

	lensReq := serperLensRequest{
		URL:      req.ImageURL,
		Country:  p.config.Country,
		Language: p.config.Language,
	}

	raw, err := p.doSerperRequest(ctx, "/lens", lensReq)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(raw.VisualMatches))
	for _, r := range raw.VisualMatches {
		results = append(results, &types.SearchResult{
			Title:  r.Title,
			URL:    r.Link,
			Source: r.Source,
		})
	}

	return &types.SearchResponse{
		Query:      req.ImageURL,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(startTime).Milliseconds(),
		Provider:   p.GetID(),
	}, nil
}

// doSerperRequest executes a request against a Serper endpoint
func (p *SerperProvider) doSerperRequest(ctx context.Context, path string, payload interface{}) (*serperResponse, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s%s", p.config.APIHost, path)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range p.BuildDefaultHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("X-API-KEY", p.config.APIKey)

	resp, err := p.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "Failed to execute request",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderError{
			Provider: p.GetID(),
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var serperResp serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&serperResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &serperResp, nil
}
