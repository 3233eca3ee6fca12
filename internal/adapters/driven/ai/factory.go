// Package ai selects and validates the reply generation backend.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/leadsync/internal/adapters/driven/collab"
	ollamallm "github.com/custodia-labs/leadsync/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/leadsync/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Backend names a reply generation implementation.
type Backend string

const (
	// BackendHTTP is the hosted response-generation collaborator.
	BackendHTTP Backend = "http"
	// BackendOllama is a local Ollama model.
	BackendOllama Backend = "ollama"
	// BackendOpenAI is the OpenAI API or a compatible endpoint.
	BackendOpenAI Backend = "openai"
)

// ParseBackend accepts a backend name case-insensitively. Empty means http.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendHTTP, nil
	case BackendHTTP, BackendOllama, BackendOpenAI:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown reply generator %q", domain.ErrInvalidInput, s)
	}
}

// GeneratorSettings configure the reply generator.
type GeneratorSettings struct {
	Backend Backend
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type pinger interface {
	Ping(ctx context.Context) error
}

// CreateReplyGenerator builds the generator for settings. The HTTP backend
// shares limiter with the other collaborator clients.
func CreateReplyGenerator(
	settings GeneratorSettings,
	prompts driven.PromptStore,
	limiter *collab.RateLimiter,
) (driven.ReplyGenerator, error) {
	var gen driven.ReplyGenerator
	switch settings.Backend {
	case BackendHTTP, "":
		if settings.URL == "" {
			return nil, fmt.Errorf("%w: reply generator url", domain.ErrMissingConfig)
		}
		gen = collab.NewGeneratorClient(collab.Options{
			URL:     settings.URL,
			APIKey:  settings.APIKey,
			Limiter: limiter,
		})
	case BackendOllama:
		gen = ollamallm.NewGenerator(ollamallm.Config{
			BaseURL: settings.URL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case BackendOpenAI:
		g, err := openaillm.NewGenerator(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.URL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("%w: unknown reply generator %q", domain.ErrInvalidInput, settings.Backend)
	}

	if aware, ok := gen.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}
	return gen, nil
}

// CreateAndValidateReplyGenerator is CreateReplyGenerator followed by a
// connectivity check for backends that support one.
func CreateAndValidateReplyGenerator(
	ctx context.Context,
	settings GeneratorSettings,
	prompts driven.PromptStore,
	limiter *collab.RateLimiter,
) (driven.ReplyGenerator, error) {
	gen, err := CreateReplyGenerator(settings, prompts, limiter)
	if err != nil {
		return nil, err
	}
	if p, ok := gen.(pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("reply generator %s unreachable: %w", settings.Backend, err)
		}
	}
	return gen, nil
}
