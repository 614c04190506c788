package nlu

// Config holds the Gemini-backed intent classifier settings, sourced from
// environment variables by the application config loader.
type Config struct {
	// Credentials are injected by the composition root, not read here.
	APIKey  string `ignored:"true"`
	BaseURL string `ignored:"true"`

	Model       string  `split_words:"true" default:"gemini-2.0-flash"`
	Temperature float32 `split_words:"true" default:"0.0"`
	MaxTokens   int     `split_words:"true" default:"64"`
}

// Enabled reports whether a classifier can be constructed at all. Without an
// API key the conversation engine runs on local heuristics alone.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
