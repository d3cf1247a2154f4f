package advisor

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainGenerator implements Generator for any OpenAI-compatible API.
type LangChainGenerator struct {
	llm llms.Model
}

type LangChainConfig struct {
	Model   string
	BaseURL string // optional, for Groq and other OpenAI-compatible APIs
	APIKey  string // falls back to OPENAI_API_KEY when empty
}

func NewLangChainGenerator(cfg LangChainConfig) (*LangChainGenerator, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}
	return &LangChainGenerator{llm: llm}, nil
}

func (g *LangChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("langchain generate: %w", err)
	}
	return text, nil
}
