// State is the browser-facing view of the UI state.
package dto

import (
	"encoding/json"
	"plantidentifier/internal/model"
	"time"
)

type State struct {
	Version    uint64                      `json:"version"`
	CaptureID  string                      `json:"captureId,omitempty"`
	PreviewURL string                      `json:"previewUrl,omitempty"`
	MediaType  string                      `json:"mediaType,omitempty"`
	Source     string                      `json:"source,omitempty"`
	CapturedAt time.Time                   `json:"capturedAt"`
	Result     *model.IdentificationResult `json:"result,omitempty"`
	Loading    bool                        `json:"loading"`
	Error      string                      `json:"error,omitempty"`
	CanSubmit  bool                        `json:"canSubmit"`
	Camera     bool                        `json:"camera"`
}

// NewState builds the view from a UI state snapshot. A result is hidden while
// an error is shown.
func NewState(s model.UIState, cameraRunning bool) State {
	state := State{
		CaptureID:  s.CaptureID,
		PreviewURL: s.PreviewURL,
		Loading:    s.Loading,
		Error:      s.Error,
		CanSubmit:  s.CanSubmit(),
		Camera:     cameraRunning,
	}
	if s.Image != nil {
		state.MediaType = s.Image.MediaType
		state.Source = s.Image.Source
		state.CapturedAt = s.Image.CapturedAt
	}
	if s.Result != nil && s.Error == "" {
		result := *s.Result
		state.Result = &result
	}
	return state
}

// MarshalJSON formats the capture time as a clock time and omits it when no image is held.
func (s State) MarshalJSON() ([]byte, error) {
	type Alias State
	capturedAt := ""
	if !s.CapturedAt.IsZero() {
		capturedAt = s.CapturedAt.Format("15:04:05")
	}
	return json.Marshal(&struct {
		CapturedAt string `json:"capturedAt,omitempty"`
		Alias
	}{
		CapturedAt: capturedAt,
		Alias:      (Alias)(s),
	})
}
