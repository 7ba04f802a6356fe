package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/ace/internal/config"
	"github.com/felixgeelhaar/ace/internal/playbook"
	"github.com/felixgeelhaar/ace/internal/provider"
)

func loadConfig() config.Config {
	cfg, err := config.Load(dataDir)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openStore(cfg config.Config) *playbook.Store {
	store, err := playbook.Open(cfg.DBPath())
	if err != nil {
		fmt.Printf("Failed to open playbook store: %v\n", err)
		os.Exit(1)
	}
	return store
}

// buildProvider creates the reasoning backend named in the config. API
// keys fall back to the conventional environment variables so the config
// file never has to hold secrets.
func buildProvider(cfg config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := cfg.OpenAI.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return provider.NewOpenAIProvider(apiKey, cfg.OpenAI.BaseURL)
	case "anthropic":
		apiKey := cfg.Anthropic.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		return provider.NewAnthropicProvider(apiKey)
	case "gemini":
		apiKey := cfg.Gemini.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		return provider.NewGeminiProvider(apiKey)
	case "ollama":
		return provider.NewOllamaProvider()
	case "cli":
		return provider.DetectCLIProvider(cfg.CLI.Path)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
