package types

type ProviderID string

const (
	ProviderSerper ProviderID = "serper"
)

// ProviderConfig represents search provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`

	// API settings
	APIHost string `json:"api_host" yaml:"api_host"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Locale settings passed through to the provider
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`   // gl parameter
	Language string `json:"language,omitempty" yaml:"language,omitempty"` // hl parameter

	// Optional settings
	Timeout int `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
}

// Validate validates the provider configuration
func (c *ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.Name == "" {
		return ErrInvalidProviderName
	}
	if c.APIHost == "" {
		return ErrInvalidAPIHost
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
