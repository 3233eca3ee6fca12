package collab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure GeneratorClient implements the interface.
var _ driven.ReplyGenerator = (*GeneratorClient)(nil)

// GeneratorClient calls the response-generation collaborator.
type GeneratorClient struct {
	client
}

// NewGeneratorClient creates a reply generation client.
func NewGeneratorClient(opts Options) *GeneratorClient {
	return &GeneratorClient{client: newClient(opts)}
}

type generateRequest struct {
	Content string `json:"content"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Tone    string `json:"tone"`
	Length  string `json:"length"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// GenerateReply returns the generated reply text. An empty response is an
// error so a blank email is never sent.
func (c *GeneratorClient) GenerateReply(ctx context.Context, req driven.ReplyRequest) (string, error) {
	var resp generateResponse
	err := c.postJSON(ctx, generateRequest{
		Content: req.Content,
		Subject: req.Subject,
		Sender:  req.Sender,
		Tone:    string(req.Tone),
		Length:  string(req.Length),
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrReplyGeneration, err)
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrReplyGeneration, errors.New("empty response"))
	}
	return text, nil
}
