package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/proctoriq/proctoriq/internal/config"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel = "llama-3.3-70b-versatile"
	defaultOAIModel  = "gpt-4o-mini"
)

// OpenAIClient talks to any OpenAI-compatible chat-completion endpoint. Groq
// is preferred when a key is present because it is much faster for the same
// prompt volume; plain OpenAI is the fallback.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
	limiter  *rate.Limiter
}

// NewFromConfig picks the provider from config. Returns an error when no API
// key is configured; callers that can run without an LLM should check
// cfg.HasLLM() first.
func NewFromConfig(cfg *config.Config) (*OpenAIClient, error) {
	switch {
	case cfg.GroqAPIKey != "":
		oc := openai.DefaultConfig(cfg.GroqAPIKey)
		oc.BaseURL = groqBaseURL
		model := cfg.Model
		if model == "" {
			model = defaultGroqModel
		}
		log.Info().Str("provider", "groq").Str("model", model).Msg("LLM client initialized")
		return &OpenAIClient{
			client:   openai.NewClientWithConfig(oc),
			provider: "groq",
			model:    model,
			limiter:  newLimiter(cfg.LLMRateLimit),
		}, nil
	case cfg.OpenAIAPIKey != "":
		model := cfg.Model
		if model == "" {
			model = defaultOAIModel
		}
		log.Info().Str("provider", "openai").Str("model", model).Msg("LLM client initialized")
		return &OpenAIClient{
			client:   openai.NewClient(cfg.OpenAIAPIKey),
			provider: "openai",
			model:    model,
			limiter:  newLimiter(cfg.LLMRateLimit),
		}, nil
	default:
		return nil, fmt.Errorf("no LLM API key configured (set GROQ_API_KEY or OPENAI_API_KEY)")
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *OpenAIClient) Model() string { return c.model }

// Complete issues one blocking chat-completion request. No retries: a
// transient provider failure is terminal for the calling phase (the phase
// degrades, per the error policy).
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &ProviderError{Provider: c.provider, Op: "rate wait", Err: err}
		}
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ProviderError{Provider: c.provider, Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: c.provider, Op: "chat completion", Err: fmt.Errorf("no choices returned")}
	}

	log.Debug().
		Str("provider", c.provider).
		Str("finishReason", string(resp.Choices[0].FinishReason)).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("LLM completion received")

	return resp.Choices[0].Message.Content, nil
}

var _ Client = (*OpenAIClient)(nil)
