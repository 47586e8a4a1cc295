package model

// UIState is the snapshot of everything the page displays.
// A camera error leaves Result in place so it returns once the camera opens;
// every other error replaces it.
type UIState struct {
	CaptureID  string
	Image      *ImagePayload
	PreviewURL string
	Result     *IdentificationResult
	Loading    bool
	Error      string
}

// CanSubmit reports whether the submit control should be enabled.
func (s UIState) CanSubmit() bool {
	return s.Image != nil && !s.Loading
}
