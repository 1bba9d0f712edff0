package tutor

import (
	"context"

	"github.com/studywithme/studywithme/plugin/ai"
)

// MockLLM is a canned-response LLM for tests. It records every request and
// replies with the queued responses in order, repeating the last one.
type MockLLM struct {
	Responses []string
	Err       error
	Requests  [][]ai.Message
}

// Chat implements ai.LLM.
func (m *MockLLM) Chat(_ context.Context, messages []ai.Message) (string, error) {
	m.Requests = append(m.Requests, messages)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	response := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return response, nil
}
