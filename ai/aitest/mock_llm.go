// Package aitest provides a scripted language model for tests.
package aitest

import (
	"context"
	"sync"
)

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// MockLLM replays its replies in order and repeats the last one when the
// script runs out.
type MockLLM struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
}

// NewMockLLM returns a model that answers with replies in order.
func NewMockLLM(replies ...Reply) *MockLLM {
	return &MockLLM{replies: replies}
}

// Text is shorthand for a successful reply.
func Text(s string) Reply { return Reply{Text: s} }

// Fail is shorthand for a failed reply.
func Fail(err error) Reply { return Reply{Err: err} }

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if len(m.replies) == 0 {
		return "", nil
	}
	i := len(m.prompts) - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i].Text, m.replies[i].Err
}

// Calls returns how many prompts the model has received.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received so far.
func (m *MockLLM) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
