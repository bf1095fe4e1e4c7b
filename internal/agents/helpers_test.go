package agents

import (
	"context"
	"errors"
	"sync"
)

// scriptedGenerator answers by system prompt, so one fake serves agents that
// make several different completion calls.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	prompts   map[string]string
	calls     int
}

func newScripted() *scriptedGenerator {
	return &scriptedGenerator{
		responses: map[string]string{},
		errs:      map[string]error{},
		prompts:   map[string]string{},
	}
}

func (s *scriptedGenerator) on(system, response string) *scriptedGenerator {
	s.responses[system] = response
	return s
}

func (s *scriptedGenerator) fail(system string, err error) *scriptedGenerator {
	s.errs[system] = err
	return s
}

func (s *scriptedGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.prompts[system] = prompt
	if err, ok := s.errs[system]; ok {
		return "", err
	}
	if resp, ok := s.responses[system]; ok {
		return resp, nil
	}
	return "", errors.New("unexpected completion call")
}

func (s *scriptedGenerator) Model() string { return "scripted" }
