// Package provider abstracts the reasoning backends the analysis stages
// call. Every stage sends a single prompt and expects one JSON object
// back; implementations enable their backend's JSON output mode where one
// exists.
package provider

import (
	"context"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the output from the model.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for AI model interactions. The model is
// chosen per call so one backend serves both the cheap triviality-filter
// model and the main analysis model.
type Provider interface {
	// Chat sends a list of messages to the model and returns a response.
	Chat(ctx context.Context, model string, messages []Message) (*Response, error)

	// Name returns the provider identifier (e.g. "openai").
	Name() string
}
