package di

import (
	"context"
	"flag"
	"io"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/mailbox"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/presenter"
	"github.com/mikey/llm-phish-analyzer/internal/config"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"github.com/mikey/llm-phish-analyzer/internal/factory"
	"github.com/mikey/llm-phish-analyzer/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classification provider flags
	Provider    string
	Endpoint    string
	Timeout     string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string
	OpenAIBaseURL   string

	// Static report for offline runs
	StaticReport string

	// Input and output flags
	InputFile  string
	Format     string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line arguments into a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("phish-check", flag.ContinueOnError)

	// Classification provider flags
	fs.StringVar(&flags.Provider, "provider", "remote", "Classification provider (remote, gemini, openai, bedrock, static)")
	fs.StringVar(&flags.Endpoint, "endpoint", "http://localhost:8080/api/classify", "Classification API endpoint for the remote provider")
	fs.StringVar(&flags.Timeout, "timeout", "30s", "Request timeout for the remote provider")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size sent for classification")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", os.Getenv("GEMINI_API_KEY"), "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")
	fs.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Alternative OpenAI compatible API base URL")

	fs.StringVar(&flags.StaticReport, "static-report", "", "Report returned by the static provider")

	// Input and output flags
	fs.StringVar(&flags.InputFile, "file", "", "Input .eml file (use stdin if not specified)")
	fs.StringVar(&flags.Format, "format", "text", "Output format (text, html, json)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and print the full response")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI application. Results are written to out; messages are read
// from stdin when no input file is given.
func BuildCLIContainer(flags *CLIFlags, stdin io.Reader, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := registerAnalysis(container); err != nil {
		return nil, err
	}

	// Register classification service
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.ClassificationService, error) {
		return f.CreateClassifier(context.Background())
	}); err != nil {
		return nil, err
	}

	// No cache for single runs
	if err := container.Provide(func() factory.StoppableCache { return nil }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) core.AnalyzerOptions {
		return core.AnalyzerOptions{MaxBodySize: cfg.GetAnalysis().MaxBodySize}
	}); err != nil {
		return nil, err
	}

	// Register message provider
	if err := container.Provide(func(flags *CLIFlags) core.MessageProvider {
		if flags.InputFile != "" {
			return mailbox.NewFileProvider(flags.InputFile)
		}
		return mailbox.NewReaderProvider(stdin)
	}); err != nil {
		return nil, err
	}

	// Register presenter
	if err := container.Provide(func(flags *CLIFlags) (core.Presenter, error) {
		return presenter.New(flags.Format, out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags.
// Only the selected provider's settings are overridden.
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()
	v.Set("classifier.provider", flags.Provider)
	v.Set("analysis.max_body_size", flags.MaxBodySize)

	for key, value := range providerOverrides(flags) {
		v.Set(flags.Provider+"."+key, value)
	}

	return config.NewFromViper(v)
}

func providerOverrides(flags *CLIFlags) map[string]any {
	sampling := map[string]any{
		"max_tokens":  flags.MaxTokens,
		"temperature": flags.Temperature,
		"top_p":       flags.TopP,
	}

	var overrides map[string]any
	switch flags.Provider {
	case factory.ProviderRemote:
		return map[string]any{"endpoint": flags.Endpoint, "timeout": flags.Timeout}
	case factory.ProviderStatic:
		if flags.StaticReport == "" {
			return nil
		}
		return map[string]any{"report": flags.StaticReport}
	case factory.ProviderBedrock:
		overrides = map[string]any{"region": flags.BedrockRegion, "model_id": flags.BedrockModelID}
	case factory.ProviderGemini:
		overrides = map[string]any{"api_key": flags.GeminiAPIKey, "model_name": flags.GeminiModelName}
	case factory.ProviderOpenAI:
		overrides = map[string]any{
			"api_key":    flags.OpenAIAPIKey,
			"model_name": flags.OpenAIModelName,
			"base_url":   flags.OpenAIBaseURL,
		}
	default:
		return nil
	}

	for k, val := range sampling {
		overrides[k] = val
	}
	return overrides
}
