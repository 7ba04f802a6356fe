package provider

import (
	"context"
	"fmt"
)

// StubProvider replays canned responses in order. Used by pipeline tests.
type StubProvider struct {
	Responses []string
	Calls     []StubCall
	next      int
}

// StubCall records one Chat invocation for assertions.
type StubCall struct {
	Model    string
	Messages []Message
}

func NewStubProvider(responses ...string) *StubProvider {
	return &StubProvider{Responses: responses}
}

func (s *StubProvider) Name() string {
	return "stub"
}

func (s *StubProvider) Chat(ctx context.Context, model string, messages []Message) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.Calls = append(s.Calls, StubCall{Model: model, Messages: messages})

	if s.next >= len(s.Responses) {
		return nil, fmt.Errorf("stub provider exhausted after %d responses", len(s.Responses))
	}
	content := s.Responses[s.next]
	s.next++

	return &Response{
		Content: content,
		Usage:   Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}
