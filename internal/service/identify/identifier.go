package identify

import (
	"context"
	"fmt"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/model"
)

// Prompt is the fixed instruction sent along with every image.
const Prompt = "Identify this plant and provide a brief description. Return the result as a JSON object with 'name' and 'description' fields."

// Model is a remote multimodal model that answers a text instruction about one image.
type Model interface {
	Generate(ctx context.Context, prompt string, image model.ImagePayload) (string, error)
}

// Identifier sends an image to the model exactly once and parses the answer.
type Identifier struct {
	model  Model
	logger *logger.Logger
}

func NewIdentifier(model Model, logger *logger.Logger) *Identifier {
	return &Identifier{
		model:  model,
		logger: logger,
	}
}

// Identify returns the plant name and description for image. Every failure is
// returned as *Error; there are no retries.
func (i *Identifier) Identify(ctx context.Context, image model.ImagePayload) (result model.IdentificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in plant identification: %v", r)
			result = model.IdentificationResult{}
			err = &Error{Kind: KindUnknown, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if len(image.Data) == 0 {
		return model.IdentificationResult{}, &Error{Kind: KindInvalidImage, Err: ErrEmptyImage}
	}

	raw, err := i.model.Generate(ctx, Prompt, image)
	if err != nil {
		i.logger.Error("Error in plant identification: %v", err)
		return model.IdentificationResult{}, &Error{Kind: KindTransport, Err: err}
	}

	i.logger.Info("Raw model response: %s", raw)

	result, err = ParseStrict(raw)
	if err == nil {
		return result, nil
	}
	i.logger.Warning("Error parsing model response as JSON: %v", err)

	result, ok := ParseLenient(raw)
	if !ok {
		return model.IdentificationResult{}, &Error{Kind: KindMalformedResponse, Raw: raw}
	}
	return result, nil
}
