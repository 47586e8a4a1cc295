package dto

// Event types pushed to viewers over the WebSocket.
const (
	EventFrame = "frame"
	EventState = "state"
)

// Event is one WebSocket message. Frame is sent base64-encoded.
type Event struct {
	Type  string `json:"type"`
	Frame []byte `json:"image,omitempty"`
	State *State `json:"state,omitempty"`
}
