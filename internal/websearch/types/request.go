package types

// SearchRequest represents a search request
type SearchRequest struct {
	Query      string `json:"query" validate:"required,min=1,max=1000"`
	MaxResults int    `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
	// Location overrides the provider's configured location
	Location string `json:"location,omitempty"`
}

// LensRequest represents a reverse image search request
type LensRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}
