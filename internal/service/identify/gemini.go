package identify

import (
	"context"
	"errors"
	"fmt"
	"plantidentifier/internal/model"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a Model backed by the Gemini generateContent endpoint.
type Gemini struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGemini creates a client authenticated with apiKey. Extra options are
// applied after the key, e.g. option.WithEndpoint.
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
	}, nil
}

// Generate sends prompt and the inline image in a single user turn and returns
// the text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string, image model.ImagePayload) (string, error) {
	response, err := g.model.GenerateContent(ctx, genai.Text(prompt), InlineData(image))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("%w: %v", ErrEmptyResponse, blocked)
		}
		return "", fmt.Errorf("generateContent on %s: %w", g.modelName, err)
	}

	return responseText(response)
}

// Close releases the underlying connections.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// InlineData pairs the image bytes with their media type. The bytes are
// base64-encoded on the wire.
func InlineData(image model.ImagePayload) genai.Blob {
	return genai.Blob{
		MIMEType: image.MediaType,
		Data:     image.Data,
	}
}

func responseText(response *genai.GenerateContentResponse) (string, error) {
	if len(response.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := response.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, candidate.FinishReason)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
