package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sitecanvas-backend/application/ports"
)

// MockProvider provides deterministic completions for development and
// testing. It inspects the prompt to pick a response shape the same way the
// prompt builder formats requests, and records every prompt it receives.
type MockProvider struct {
	mu        sync.Mutex
	available bool
	err       error
	prompts   []string
	responses map[string]string
}

// NewMockProvider creates an available mock provider with canned responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		available: true,
		responses: make(map[string]string),
	}
}

// IsAvailable returns whether the mock provider is available.
func (m *MockProvider) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// SetAvailable controls availability (for testing).
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// SetError forces every Complete call to fail (for testing).
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetResponse overrides the canned response for a prompt marker.
func (m *MockProvider) SetResponse(marker, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[marker] = response
}

// Prompts returns every prompt received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Complete returns a canned response keyed off the prompt's task marker.
func (m *MockProvider) Complete(ctx context.Context, prompt string, options ports.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)

	for marker, response := range m.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}

	switch {
	case strings.Contains(prompt, "competitor website"):
		return `{"summary": "Clean SaaS landing page with strong social proof.",
			"strengths": ["clear value proposition", "prominent testimonials"],
			"design_patterns": ["hero with product screenshot", "three-column pricing"],
			"ctas": ["Start free trial", "Book a demo"]}`, nil
	case strings.Contains(prompt, "reference design"):
		return `{"style_mood": "minimal and airy",
			"layout_patterns": ["centered hero", "alternating feature rows"],
			"components": ["sticky navbar", "card grid", "footer with sitemap"],
			"notes": "Generous whitespace with a single accent color."}`, nil
	case strings.Contains(prompt, "product requirements document"):
		return "# Page PRD\n\n## Purpose\nMock requirements document.\n\n## Sections\n- Hero\n- Features\n", nil
	case strings.Contains(prompt, "React component"):
		return "export function Section() {\n  return <section>mock</section>;\n}\n", nil
	default:
		return "", fmt.Errorf("unsupported prompt type")
	}
}
