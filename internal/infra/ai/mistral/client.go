package mistral

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	domai "github.com/clausewise/clausewise/internal/domain/ai"
)

const defaultBaseURL = "https://api.mistral.ai/v1"

const (
	analysisMaxTokens = 2500
	answerMaxTokens   = 600
	answerTemperature = 0.2
)

// Client talks to the Mistral chat-completions API. Mistral's API is
// OpenAI-compatible, so the transport is the go-openai client pointed at
// Mistral's base URL.
type Client struct {
	api   *openai.Client
	Model string
}

func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{api: openai.NewClientWithConfig(cfg), Model: model}
}

// promptSeed derives a stable seed from the prompt text so that identical
// contracts get identical sampling parameters while different contracts
// spread across the temperature band.
func promptSeed(prompt string) int {
	sum := md5.Sum([]byte(prompt))
	return int(binary.BigEndian.Uint32(sum[:4]) % 1000)
}

// Analyze sends a contract-analysis prompt. Temperature varies in
// [0.7, 0.8) by prompt hash, with a matching seed for reproducibility.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	seed := promptSeed(prompt)
	temperature := 0.7 + float32(seed%100)/1000

	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   analysisMaxTokens,
		Seed:        &seed,
	}
	return c.complete(ctx, req)
}

// Answer sends a Q&A prompt. Low temperature and a small token budget keep
// chat replies focused.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	}
	return c.complete(ctx, req)
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.HTTPStatusCode {
			case http.StatusTooManyRequests:
				return "", domai.ErrQuotaExceeded
			case http.StatusUnauthorized:
				return "", domai.ErrUnauthorized
			}
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
