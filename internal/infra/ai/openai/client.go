package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/legisequity/bloggen/internal/domain/ai"
)

type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a client against an OpenAI-compatible endpoint. baseURL
// may be empty for the default API host.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) StreamCompletion(ctx context.Context, req ai.CompletionRequest) (ai.Stream, error) {
	r := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens: req.MaxTokens,
		Stream:    true,
	}
	if req.JSONMode {
		r.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	s, err := c.client.CreateChatCompletionStream(ctx, r)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, ai.ErrQuotaExceeded
		}
		return nil, err
	}
	return &stream{s: s}, nil
}

type stream struct {
	s *openai.ChatCompletionStream
}

// Recv returns the next content delta; io.EOF from the underlying stream is
// passed through unchanged.
func (st *stream) Recv() (string, error) {
	resp, err := st.s.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (st *stream) Close() error { return st.s.Close() }
