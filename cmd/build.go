package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/ai/gemini"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/extraction"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/questions"
	"github.com/spigell/hh-screener/internal/secrets"

	"go.uber.org/zap"
)

// newCompleter returns the configured completion service. When no api key is
// configured the interview still runs, on patterns and the question bank only.
func newCompleter(ctx context.Context, cfg *AIConfig, m *metrics.Metrics, logger *zap.Logger) (ai.Completer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   []string{"GEMINI_API_KEY"},
	})
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			logger.Warn("completion service is disabled, falling back to patterns and the question bank",
				zap.String("hint", "set GEMINI_API_KEY, HH_SCREENER_GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
			)
			return ai.Unavailable{}, nil
		}
		return nil, err
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        cfg.Gemini.Model,
		MaxRetries:   cfg.Gemini.MaxRetries,
		MaxLogLength: cfg.Gemini.MaxLogLength,
		Temperature:  cfg.Gemini.Temperature,
		RateLimit:    cfg.RateLimit,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	var completer ai.Completer = generator
	completer = ai.WithTimeout(completer, cfg.Timeout)
	completer = ai.WithObserver(completer, func(task ai.Task, elapsed time.Duration, err error) {
		m.ObserveCompletion(string(task), elapsed, err)
	})
	return completer, nil
}

// newMachine wires the interview with its extraction and question generation.
func newMachine(ctx context.Context, config *Config, m *metrics.Metrics, logger *zap.Logger) (*interview.Machine, error) {
	completer, err := newCompleter(ctx, config.AI, m, logger)
	if err != nil {
		return nil, fmt.Errorf("create completion service: %w", err)
	}

	ic := config.Interview
	exitPhrases := ic.ExitPhrases
	if len(exitPhrases) == 0 {
		exitPhrases = interview.DefaultExitPhrases
	}

	validator := candidate.NewValidator(candidate.Rules{
		PhoneMinDigits: ic.PhoneDigits.Min,
		PhoneMaxDigits: ic.PhoneDigits.Max,
		MaxExperience:  ic.MaxExperience,
		Reserved:       exitPhrases,
	})

	extractor := extraction.New(completer, logger.Named("extraction"),
		extraction.WithBudget(ai.NewBudget(ic.HistoryTokens)),
		extraction.WithMaxLogLength(config.AI.Gemini.MaxLogLength),
	)
	generator := questions.New(completer, ic.QuestionCount, logger.Named("questions"))

	return interview.New(interview.Config{
		Company:        ic.Company,
		ExitPhrases:    exitPhrases,
		HistoryLines:   ic.HistoryLines,
		MaxInputLength: ic.MaxInput,
	}, interview.Deps{
		Extractor: extractor,
		Generator: generator,
		Validator: validator,
		Logger:    logger.Named("interview"),
		Metrics:   m,
	})
}
