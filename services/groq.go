package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Error categories for LLM calls. Upstream failures are terminal for the
// call; retrying is the caller's decision.
var (
	ErrMissingAPIKey = errors.New("groq api key not configured")
	ErrEmptyResponse = errors.New("empty completion response")
)

// ParseError marks a model response that was not valid JSON matching the
// expected schema. It must never silently fall back to partial data.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("response parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GroqService wraps the Groq OpenAI-compatible chat completion endpoint.
// All structured calls request strict JSON output.
type GroqService struct {
	client *openai.Client
	model  string
}

// NewGroqService creates a Groq-backed completion client. Returns nil when
// no API key is configured; callers treat a nil service as a configuration
// error at call time.
func NewGroqService(apiKey, baseURL, model string) *GroqService {
	if apiKey == "" {
		slog.Warn("Groq API key not configured, AI features disabled")
		return nil
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &GroqService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ChatTurn is one prior exchange replayed to the model for context.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// historyWindow caps how many prior turns are replayed per request
const historyWindow = 8

// CompleteJSON sends a system+user prompt pair and returns the raw JSON
// content string. temperature 0.3 keeps evaluation output stable.
func (g *GroqService) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	return g.CompleteJSONChat(ctx, systemPrompt, nil, userPrompt, temperature)
}

// CompleteJSONChat is CompleteJSON with prior conversation turns replayed
// between the system and user prompts. Only the trailing historyWindow
// turns are sent.
func (g *GroqService) CompleteJSONChat(ctx context.Context, systemPrompt string, history []ChatTurn, userPrompt string, temperature float32) (string, error) {
	if g == nil || g.client == nil {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: turn.Role, Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: userPrompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	slog.Info("Groq completion received",
		"model", g.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"content_length", len(content))

	return content, nil
}
