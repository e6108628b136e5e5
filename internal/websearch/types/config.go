package types

type ProviderID string

const (
	ProviderSearXNG ProviderID = "searxng"
	ProviderGoogle  ProviderID = "google"
	ProviderTavily  ProviderID = "tavily"

	// ProviderAuto selects the first configured provider.
	ProviderAuto ProviderID = "auto"
)

// ProviderConfig represents search provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" yaml:"id" mapstructure:"id"`
	Name string     `json:"name" yaml:"name" mapstructure:"name"`

	// API settings
	APIHost string `json:"api_host" yaml:"api_host" mapstructure:"api_host"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Google Custom Search engine ID (cx)
	EngineID string `json:"engine_id,omitempty" yaml:"engine_id,omitempty" mapstructure:"engine_id"`

	// SearXNG basic auth
	BasicAuthUsername string `json:"basic_auth_username,omitempty" yaml:"basic_auth_username,omitempty" mapstructure:"basic_auth_username"`
	BasicAuthPassword string `json:"basic_auth_password,omitempty" yaml:"basic_auth_password,omitempty" mapstructure:"basic_auth_password"`

	// Optional settings
	Timeout    int `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`          // seconds
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" mapstructure:"max_retries"` // default: 3
	RateLimit  int `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`    // requests per second, 0 = unlimited
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

	switch c.ID {
	case ProviderSearXNG:
		// SearXNG doesn't require an API key but may need basic auth
		if c.BasicAuthUsername != "" && c.BasicAuthPassword == "" {
			return ErrMissingBasicAuthPassword
		}
	case ProviderGoogle:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
		if c.EngineID == "" {
			return ErrMissingEngineID
		}
	default:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	}

	return nil
}
