package oracle

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangChain adapts a langchaingo model.
type LangChain struct {
	model       llms.Model
	temperature float64
}

var _ Oracle = (*LangChain)(nil)

// NewLangChain wraps model.
func NewLangChain(model llms.Model, temperature float64) *LangChain {
	return &LangChain{model: model, temperature: temperature}
}

// NewLangChainOpenAI builds a LangChain oracle over langchaingo's OpenAI
// client, which also serves OpenAI-compatible endpoints through BaseURL.
func NewLangChainOpenAI(cfg Config) (*LangChain, error) {
	opts := []lcopenai.Option{lcopenai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, lcopenai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("oracle: create langchain openai client: %w", err)
	}
	return NewLangChain(llm, cfg.Temperature), nil
}

func (l *LangChain) messages(systemPrompt, userPrompt string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
	}
}

func (l *LangChain) generate(ctx context.Context, systemPrompt, userPrompt string, opts ...llms.CallOption) (string, error) {
	opts = append(opts, llms.WithTemperature(l.temperature))
	resp, err := l.model.GenerateContent(ctx, l.messages(systemPrompt, userPrompt), opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Content, nil
}

// Invoke implements Oracle.
func (l *LangChain) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return l.generate(ctx, systemPrompt, userPrompt)
}

// Stream implements Oracle.
func (l *LangChain) Stream(ctx context.Context, systemPrompt, userPrompt string, onChunk ChunkFunc) (string, error) {
	return l.generate(ctx, systemPrompt, userPrompt,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if onChunk == nil || len(chunk) == 0 {
				return nil
			}
			return onChunk(ctx, string(chunk))
		}))
}
