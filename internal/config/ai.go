package config

import "time"

const defaultAITimeout = 60 * time.Second

// AIConfig configures the Gemini generation backend. The API key is only
// ever supplied at runtime and is never serialized.
type AIConfig struct {
	APIKey            string `toml:"api_key" json:"-"`
	BaseURL           string `toml:"base_url" json:"baseUrl"`
	Model             string `toml:"model" json:"model"`
	TimeoutMS         int    `toml:"timeout_ms" json:"timeoutMs"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requestsPerMinute"`
}

func DefaultAIConfig() AIConfig {
	return AIConfig{
		BaseURL:           "https://generativelanguage.googleapis.com/v1beta/models",
		Model:             "gemini-2.0-flash",
		TimeoutMS:         60000,
		RequestsPerMinute: 10,
	}
}

// Timeout bounds one generation request.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return defaultAITimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// IsEnabled returns true if the AI API is configured
func (c AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the generateContent endpoint of the configured model.
func (c AIConfig) ModelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}
