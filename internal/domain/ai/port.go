package ai

import "context"

// CompletionRequest describes one streaming chat completion.
type CompletionRequest struct {
	System    string
	User      string
	JSONMode  bool
	MaxTokens int
}

// Stream yields content deltas; Recv returns io.EOF when the provider
// stream ends.
type Stream interface {
	Recv() (string, error)
	Close() error
}

type Client interface {
	StreamCompletion(ctx context.Context, req CompletionRequest) (Stream, error)
}
