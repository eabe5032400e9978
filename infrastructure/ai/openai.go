// Package ai provides the language-model provider implementations and the
// prompt construction for generation runs.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	pkgerrors "sitecanvas-backend/pkg/errors"
)

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint. All
// calls go through a circuit breaker so a degraded provider fails fast
// instead of stacking up timed-out requests.
type OpenAIProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// OpenAIConfig configures the provider.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAIProvider creates a provider against an OpenAI-compatible API.
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-provider",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &OpenAIProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		breaker:    breaker,
		logger:     logger,
	}
}

// IsAvailable reports whether the provider is configured and the breaker is
// not open.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != "" && p.breaker.State() != gobreaker.StateOpen
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat *formatRequest `json:"response_format,omitempty"`
}

type formatRequest struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, options ports.CompletionOptions) (string, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.complete(ctx, prompt, options)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", pkgerrors.NewExternalError("AI provider temporarily unavailable", err)
		}
		return "", err
	}
	return result.(string), nil
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string, options ports.CompletionOptions) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	if options.Format == "json" {
		payload.ResponseFormat = &formatRequest{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", pkgerrors.NewInternalError("marshaling completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.NewInternalError("building completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.NewExternalError("completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", pkgerrors.NewExternalError("reading completion response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", pkgerrors.NewExternalError("decoding completion response", err)
	}
	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("provider returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			message = fmt.Sprintf("%s: %s", message, parsed.Error.Message)
		}
		return "", pkgerrors.NewExternalError(message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", pkgerrors.NewExternalError("provider returned no choices", nil)
	}

	p.logger.Debug("completion finished",
		zap.String("model", p.model),
		zap.Duration("elapsed", time.Since(start)))
	return parsed.Choices[0].Message.Content, nil
}
