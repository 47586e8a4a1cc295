package model

import "time"

// Capture sources.
const (
	SourceUpload = "upload"
	SourceCamera = "camera"
)

// ImagePayload is a single captured or uploaded image. It is never modified
// after creation; a new capture replaces it.
type ImagePayload struct {
	Data       []byte    `json:"-"`
	MediaType  string    `json:"mediaType"`
	Source     string    `json:"source"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Size returns the payload length in bytes.
func (p *ImagePayload) Size() int {
	return len(p.Data)
}
