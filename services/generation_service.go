package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/generator"
	"github.com/ravigill3969/textgen-quota/models"
)

const (
	// MaxPromptLength mirrors the max tag on models.GenerateForm.
	MaxPromptLength = 4000

	haikuPrompt        = "write a haiku about ai"
	jokePrompt         = "Tell me a random funny joke of the day. Keep it short, clever, and family-friendly."
	personalJokePrompt = "Create a light-hearted, funny joke that includes the name %s in a playful way. Keep it family-friendly and clever."
)

type GenerationService struct {
	gen     generator.TextGenerator
	quota   *QuotaService
	timeout time.Duration
}

func NewGenerationService(gen generator.TextGenerator, quota *QuotaService, timeout time.Duration) *GenerationService {
	return &GenerationService{gen: gen, quota: quota, timeout: timeout}
}

func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, prompt string) (*models.GenerateRes, error) {
	form := models.GenerateForm{Prompt: strings.TrimSpace(prompt)}
	if err := validateForm(form); err != nil {
		return nil, err
	}
	return s.run(ctx, userID, form.Prompt)
}

func (s *GenerationService) GenerateHaiku(ctx context.Context, userID uuid.UUID) (*models.GenerateRes, error) {
	return s.run(ctx, userID, haikuPrompt)
}

func (s *GenerationService) GenerateJoke(ctx context.Context, userID uuid.UUID, username string) (*models.GenerateRes, error) {
	form := models.JokeForm{Username: strings.TrimSpace(username)}
	if err := validateForm(form); err != nil {
		return nil, err
	}
	if form.Username == "" {
		return s.run(ctx, userID, jokePrompt)
	}
	return s.run(ctx, userID, fmt.Sprintf(personalJokePrompt, form.Username))
}

// run calls the generator and charges one call only once text came back.
// The quota read up front also rejects sessions of deleted users before any
// upstream call is made.
func (s *GenerationService) run(ctx context.Context, userID uuid.UUID, prompt string) (*models.GenerateRes, error) {
	remaining, err := s.quota.Read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 && s.quota.Enforced() {
		return nil, ErrQuotaExhausted
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gen.Generate(genCtx, prompt)
	if err != nil {
		return nil, s.upstreamError(ctx, err)
	}

	slog.DebugContext(ctx, "text generated",
		"user_id", userID,
		"generator", s.gen.Name(),
		"duration", time.Since(start),
	)

	res, err := s.quota.Decrement(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement api calls: %w", err)
	}

	return &models.GenerateRes{GeneratedText: text, APICalls: res.Remaining}, nil
}

func (s *GenerationService) upstreamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		// the client went away; nothing useful can be reported
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		slog.WarnContext(ctx, "text generation timed out", "generator", s.gen.Name(), "timeout", s.timeout)
		return ErrUpstreamTimeout
	}
	slog.ErrorContext(ctx, "text generation failed", "generator", s.gen.Name(), "error", err)
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
