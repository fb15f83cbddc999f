package generator

import (
	"context"
	"fmt"

	"github.com/ravigill3969/textgen-quota/config"
)

// TextGenerator turns a prompt into text. Implementations must honour ctx
// cancellation and must not retry on their own.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

func New(ctx context.Context, cfg config.GeneratorConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
