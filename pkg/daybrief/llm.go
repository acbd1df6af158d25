package daybrief

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

const (
	completionMaxAttempts = 3
	completionMaxTokens   = 4096
	completionTimeout     = 2 * time.Minute
)

// interactiveBackoff is the delay schedule between interactive attempts.
// Three attempts consume the first two entries; the tail applies only when
// the attempt ceiling is raised (the last entry repeats beyond it).
var interactiveBackoff = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// Completer abstracts the chat-completion call for the orchestrator.
type Completer interface {
	// CompleteAutomated walks the deduplicated model preference order, one
	// model per attempt, without delay between attempts.
	CompleteAutomated(ctx context.Context, prompt, system string, models []string) (string, error)
	// CompleteInteractive retries the primary model with exponential
	// backoff, treating HTTP 404/503 and transport faults as retryable.
	CompleteInteractive(ctx context.Context, prompt, system string, models []string) (string, error)
}

type completionClientOptions struct {
	Logger           *slog.Logger
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	GeminiAPIKey     string
	OpenAIBaseURL    string // optional override, used by tests
	AnthropicBaseURL string // optional override, used by tests
}

type completionClient struct {
	logger           *slog.Logger
	openAIKey        string
	anthropicKey     string
	geminiKey        string
	openAIBaseURL    string
	anthropicBaseURL string
}

func newCompletionClient(opts completionClientOptions) *completionClient {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &completionClient{
		logger:           logger,
		openAIKey:        strings.TrimSpace(opts.OpenAIAPIKey),
		anthropicKey:     strings.TrimSpace(opts.AnthropicAPIKey),
		geminiKey:        strings.TrimSpace(opts.GeminiAPIKey),
		openAIBaseURL:    strings.TrimSpace(opts.OpenAIBaseURL),
		anthropicBaseURL: strings.TrimSpace(opts.AnthropicBaseURL),
	}
}

// CompleteAutomated tries each model of the deduplicated preference order in
// turn, up to the attempt ceiling. Returns ErrCompletionFailed once every
// attempt is exhausted.
func (cc *completionClient) CompleteAutomated(ctx context.Context, prompt, system string, models []string) (string, error) {
	order := dedupeModels(models)
	if len(order) == 0 {
		return "", WrapError(ErrCodeCompletion, "no models configured", ErrCompletionFailed)
	}

	attempt := 0
	policy := retryPolicy{MaxAttempts: completionMaxAttempts}
	text, err := executeWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		model := order[attempt%len(order)]
		attempt++
		cc.logger.Info("completion attempt", "model", model, "attempt", attempt, "mode", "automated")
		return cc.completeOnce(ctx, model, system, prompt)
	})
	if err != nil {
		cc.logger.Warn("completion exhausted all models", "err", err)
		return "", WrapError(ErrCodeCompletion, fmt.Sprintf("all models failed: %v", err), ErrCompletionFailed)
	}
	return text, nil
}

// CompleteInteractive retries the primary model with 2s/4s/8s backoff.
func (cc *completionClient) CompleteInteractive(ctx context.Context, prompt, system string, models []string) (string, error) {
	order := dedupeModels(models)
	if len(order) == 0 {
		return "", WrapError(ErrCodeCompletion, "no models configured", ErrCompletionFailed)
	}
	model := order[0]

	attempt := 0
	policy := retryPolicy{
		MaxAttempts: completionMaxAttempts,
		Backoff:     interactiveBackoff,
		RetryableFn: isRetryableCompletionError,
	}
	text, err := executeWithPolicy(ctx, policy, func(ctx context.Context) (string, error) {
		attempt++
		cc.logger.Info("completion attempt", "model", model, "attempt", attempt, "mode", "interactive")
		return cc.completeOnce(ctx, model, system, prompt)
	})
	if err != nil {
		cc.logger.Warn("interactive completion failed", "model", model, "err", err)
		return "", WrapError(ErrCodeCompletion, fmt.Sprintf("model %s failed: %v", model, err), ErrCompletionFailed)
	}
	return text, nil
}

func (cc *completionClient) completeOnce(ctx context.Context, model, system, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "claude"):
		return cc.completeAnthropic(requestCtx, model, system, prompt)
	case strings.HasPrefix(lower, "gemini"):
		return cc.completeGemini(requestCtx, model, system, prompt)
	default:
		return cc.completeOpenAI(requestCtx, model, system, prompt)
	}
}

func (cc *completionClient) completeOpenAI(ctx context.Context, model, system, prompt string) (string, error) {
	// The SDK retries transient failures internally by default; that would
	// hide failures from the fallback walk, so each call here is one request.
	options := []openaioption.RequestOption{
		openaioption.WithAPIKey(cc.openAIKey),
		openaioption.WithMaxRetries(0),
	}
	if cc.openAIBaseURL != "" {
		options = append(options, openaioption.WithBaseURL(cc.openAIBaseURL))
	}
	client := openai.NewClient(options...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(completionMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai completion: empty content")
	}
	return content, nil
}

func (cc *completionClient) completeAnthropic(ctx context.Context, model, system, prompt string) (string, error) {
	options := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cc.anthropicKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cc.anthropicBaseURL != "" {
		options = append(options, anthropicoption.WithBaseURL(cc.anthropicBaseURL))
	}
	client := anthropic.NewClient(options...)

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: completionMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic completion: empty content")
	}
	content := strings.TrimSpace(resp.Content[0].Text)
	if content == "" {
		return "", errors.New("anthropic completion: empty content")
	}
	return content, nil
}

func (cc *completionClient) completeGemini(ctx context.Context, model, system, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cc.geminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:     genai.Ptr(float32(0.2)),
		MaxOutputTokens: completionMaxTokens,
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", errors.New("gemini completion: empty content")
	}
	return content, nil
}

func dedupeModels(models []string) []string {
	var order []string
	seen := map[string]bool{}
	for _, m := range models {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		order = append(order, trimmed)
	}
	return order
}

// isRetryableCompletionError classifies interactive-path failures: transport
// faults and timeouts retry, and HTTP 404/503 retry because gateways emit
// them transiently during model rollover. Other API errors fail fast.
func isRetryableCompletionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if status, ok := completionErrorStatus(err); ok {
		return status == 404 || status == 503
	}
	// Transport-level failures from the SDKs arrive as plain wrapped errors.
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "connection") || strings.Contains(message, "timeout") || strings.Contains(message, "eof")
}

func completionErrorStatus(err error) (int, bool) {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}
	return 0, false
}
