package identify

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a Gemini client is built without a credential.
var ErrMissingAPIKey = errors.New("gemini API key is required")

// ErrEmptyImage is returned for a payload without any bytes.
var ErrEmptyImage = errors.New("failed to read image file")

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Kind classifies identification failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindMalformedResponse
	KindInvalidImage
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	case KindInvalidImage:
		return "invalid_image"
	default:
		return "unknown"
	}
}

// Error is the only error type Identify returns. Its message is safe to show
// to the user: the transport cause is kept for Unwrap but never printed.
type Error struct {
	Kind Kind
	Raw  string // model output that could not be parsed
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return "plant identification failed: remote model request failed"
	case KindMalformedResponse:
		return fmt.Sprintf("plant identification failed: unable to parse the plant identification result: %s", e.Raw)
	case KindInvalidImage:
		return fmt.Sprintf("plant identification failed: %v", e.Err)
	default:
		return "an unknown error occurred during plant identification"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an identification error, or KindUnknown for
// errors that did not come from this package.
func KindOf(err error) Kind {
	var identifyErr *Error
	if errors.As(err, &identifyErr) {
		return identifyErr.Kind
	}
	return KindUnknown
}
