// Package llm holds what the LLM-backed reply generators share.
package llm

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// DefaultReplyPrompt is used when no PromptStore is configured.
const DefaultReplyPrompt = `You are replying on behalf of a sales team to an inbound lead.
Write a {{.Tone}} reply of {{.Length}} length. Do not invent prices, dates or
commitments. Return ONLY the body of the email, without a subject line.

From: {{.Sender}}
Subject: {{.Subject}}

{{.Content}}`

// RenderReplyPrompt renders the auto-reply prompt for req, loading the
// template from store when one is configured.
func RenderReplyPrompt(store driven.PromptStore, req driven.ReplyRequest) (string, error) {
	text := DefaultReplyPrompt
	if store != nil {
		if loaded, err := store.Load(driven.PromptAutoReply); err == nil && loaded != "" {
			text = loaded
		}
	}

	tmpl, err := template.New(driven.PromptAutoReply).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse reply prompt: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, req); err != nil {
		return "", fmt.Errorf("render reply prompt: %w", err)
	}
	return b.String(), nil
}

// MaxTokens maps the requested reply length onto a generation budget.
func MaxTokens(length string) int {
	switch length {
	case "short":
		return 150
	case "long":
		return 600
	default:
		return 300
	}
}
