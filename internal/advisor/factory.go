package advisor

import (
	"context"
	"fmt"

	"tenant-portal/internal/config"
)

// NewGenerator picks the text-generation backend named by cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.AdvisorConfig) (Generator, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	case "openai":
		return NewLangChainGenerator(LangChainConfig{
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
		})
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
	}
}
