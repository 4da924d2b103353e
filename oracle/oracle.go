// Package oracle wraps the text-completion service the assistant delegates
// all language understanding to.
//
// Two providers are available: LangChain, built on tmc/langchaingo models,
// and OpenAI, built directly on sashabaranov/go-openai. Both satisfy Oracle
// and are usually wrapped by WithTimeout so that no single call can stall a
// turn.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyReply is returned when the provider answers without any choice.
	ErrEmptyReply = errors.New("oracle: empty reply")

	// ErrTimeout is returned when a call exceeds its per-call deadline.
	ErrTimeout = errors.New("oracle: call timed out")
)

// ChunkFunc receives incremental reply text while streaming.
type ChunkFunc func(ctx context.Context, chunk string) error

// Oracle is a text-completion service.
type Oracle interface {
	// Invoke returns the full reply to userPrompt under systemPrompt.
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Stream is Invoke that also reports the reply incrementally. The
	// returned string is the complete reply.
	Stream(ctx context.Context, systemPrompt, userPrompt string, onChunk ChunkFunc) (string, error)
}

// Provider names accepted by New.
const (
	ProviderLangChain = "langchain"
	ProviderOpenAI    = "openai"
)

// DefaultTemperature keeps classification and extraction close to
// deterministic.
const DefaultTemperature = 0.1

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// New builds the configured provider, wrapped with the per-call timeout.
func New(cfg Config) (Oracle, error) {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	var (
		o   Oracle
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderLangChain:
		o, err = NewLangChainOpenAI(cfg)
	case ProviderOpenAI:
		o = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("oracle: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(o, cfg.Timeout), nil
}

type timeoutOracle struct {
	next    Oracle
	timeout time.Duration
}

// WithTimeout bounds every call to o by d. A non-positive d returns o as is.
// Expiry of the per-call deadline is reported as ErrTimeout; cancellation of
// the caller's context is reported as the context's error.
func WithTimeout(o Oracle, d time.Duration) Oracle {
	if d <= 0 {
		return o
	}
	return &timeoutOracle{next: o, timeout: d}
}

func (t *timeoutOracle) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.next.Invoke(cctx, systemPrompt, userPrompt)
	return out, t.translate(ctx, cctx, err)
}

func (t *timeoutOracle) Stream(ctx context.Context, systemPrompt, userPrompt string, onChunk ChunkFunc) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.next.Stream(cctx, systemPrompt, userPrompt, onChunk)
	return out, t.translate(ctx, cctx, err)
}

func (t *timeoutOracle) translate(parent, ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, t.timeout, err)
	}
	return err
}
