package config

import "time"

// RemoteConfig represents the configuration for the remote classification API
type RemoteConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// AnalysisConfig controls how emails are prepared for classification
type AnalysisConfig struct {
	MaxBodySize    int
	TrustedDomains []string
}

// SMTPConfig represents the SMTP content filter settings
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	AnalysisTimeout time.Duration
	BlockPhishing   bool
	ModifySubject   bool
	SubjectPrefix   string
	RelayEnabled    bool
	RelayAddress    string
	RelayPort       int
}

// GetRemote returns the remote API configuration
func (c *Config) GetRemote() (RemoteConfig, error) {
	timeout, err := c.GetDuration("remote.timeout")
	if err != nil {
		return RemoteConfig{}, err
	}
	return RemoteConfig{
		Endpoint: c.GetString("remote.endpoint"),
		Timeout:  timeout,
	}, nil
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAnalysis returns the analysis configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MaxBodySize:    c.GetInt("analysis.max_body_size"),
		TrustedDomains: c.GetStringSlice("analysis.trusted_domains"),
	}
}

// GetSMTP returns the SMTP filter configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("server.smtp.analysis_timeout")
	if err != nil {
		return SMTPConfig{}, err
	}
	return SMTPConfig{
		Enabled:         c.GetBool("server.smtp.enabled"),
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		AnalysisTimeout: timeout,
		BlockPhishing:   c.GetBool("server.smtp.block_phishing"),
		ModifySubject:   c.GetBool("server.smtp.modify_subject"),
		SubjectPrefix:   c.GetString("server.smtp.subject_prefix"),
		RelayEnabled:    c.GetBool("server.smtp.relay.enabled"),
		RelayAddress:    c.GetString("server.smtp.relay.address"),
		RelayPort:       c.GetInt("server.smtp.relay.port"),
	}, nil
}
