package service

import (
	"context"
	"errors"
	"plantidentifier/internal/dto"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/model"
	"sync"

	"github.com/google/uuid"
)

// CameraErrorMessage is shown when the camera cannot be opened.
const CameraErrorMessage = "Unable to access camera. Please make sure you've granted the necessary permissions."

var (
	ErrNoImage    = errors.New("no image selected")
	ErrBusy       = errors.New("an identification is already in progress")
	ErrSuperseded = errors.New("image was replaced before identification finished")
)

type PlantIdentifier interface {
	Identify(ctx context.Context, image model.ImagePayload) (model.IdentificationResult, error)
}

type Camera interface {
	Start() error
	Capture() (model.ImagePayload, error)
	Stop() error
	Running() bool
}

type StateBroadcaster interface {
	BroadcastState(state dto.State)
}

// Manager owns the UI state and applies every transition to it.
type Manager struct {
	identifier       PlantIdentifier
	camera           Camera
	websocketService StateBroadcaster
	logger           *logger.Logger

	mu    sync.Mutex
	state model.UIState
	// bumped on every transition so viewers can drop out-of-order states
	version uint64
}

func NewManager(identifier PlantIdentifier, camera Camera, websocketService StateBroadcaster, logger *logger.Logger) *Manager {
	manager := &Manager{
		identifier:       identifier,
		camera:           camera,
		websocketService: websocketService,
		logger:           logger,
	}

	manager.logger.Info("🌱 Manager started")
	return manager
}

// StartCapture replaces the held image, clearing any previous result or error.
// A request already in flight keeps the loading flag until it returns.
func (m *Manager) StartCapture(image model.ImagePayload) dto.State {
	captureID := uuid.NewString()

	m.mu.Lock()
	m.state = model.UIState{
		CaptureID:  captureID,
		Image:      &image,
		PreviewURL: "/api/preview?capture=" + captureID,
		Loading:    m.state.Loading,
	}
	state := m.publish()
	m.mu.Unlock()

	m.logger.Info("New %s image %s (%s, %d bytes)", image.Source, captureID, image.MediaType, image.Size())
	m.websocketService.BroadcastState(state)
	return state
}

// StartCamera opens the camera. On failure the camera message is shown and
// the held image and result are left as they were.
func (m *Manager) StartCamera() (dto.State, error) {
	err := m.camera.Start()

	m.mu.Lock()
	if err != nil {
		m.state.Error = CameraErrorMessage
	} else if m.state.Error == CameraErrorMessage {
		m.state.Error = ""
	}
	state := m.publish()
	m.mu.Unlock()

	m.websocketService.BroadcastState(state)
	return state, err
}

// CaptureFromCamera turns the latest camera frame into the held image.
func (m *Manager) CaptureFromCamera() (dto.State, error) {
	image, err := m.camera.Capture()
	if err != nil {
		return m.State(), err
	}
	return m.StartCapture(image), nil
}

func (m *Manager) StopCamera() (dto.State, error) {
	err := m.camera.Stop()
	if err != nil {
		m.logger.Error("Error stopping camera: %v", err)
	}

	m.mu.Lock()
	state := m.publish()
	m.mu.Unlock()

	m.websocketService.BroadcastState(state)
	return state, err
}

// Submit sends the held image for identification and waits for the outcome.
// Only one identification runs at a time and it is not cancelled when ctx is.
func (m *Manager) Submit(ctx context.Context) (dto.State, error) {
	m.mu.Lock()
	if m.state.Image == nil {
		state := m.snapshot()
		m.mu.Unlock()
		return state, ErrNoImage
	}
	if m.state.Loading {
		state := m.snapshot()
		m.mu.Unlock()
		return state, ErrBusy
	}

	m.state.Loading = true
	m.state.Result = nil
	m.state.Error = ""
	image := *m.state.Image
	captureID := m.state.CaptureID
	state := m.publish()
	m.mu.Unlock()

	m.websocketService.BroadcastState(state)
	m.logger.Info("🔍 Identifying image %s", captureID)

	result, err := m.identifier.Identify(context.WithoutCancel(ctx), image)

	m.mu.Lock()
	m.state.Loading = false
	if m.state.CaptureID != captureID {
		state = m.publish()
		m.mu.Unlock()

		m.logger.Warning("Discarding identification of %s, image was replaced by %s", captureID, state.CaptureID)
		m.websocketService.BroadcastState(state)
		return state, ErrSuperseded
	}

	if err != nil {
		m.state.Error = err.Error()
	} else {
		m.state.Result = &result
	}
	state = m.publish()
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("Identification of %s failed: %v", captureID, err)
	} else {
		m.logger.Info("✅ Identified %s as %s", captureID, result.Name)
	}
	m.websocketService.BroadcastState(state)
	return state, err
}

func (m *Manager) State() dto.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Preview returns the held image if captureID still names it.
func (m *Manager) Preview(captureID string) (*model.ImagePayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Image == nil || captureID != m.state.CaptureID {
		return nil, false
	}
	image := *m.state.Image
	return &image, true
}

// snapshot must be called with mu held.
func (m *Manager) snapshot() dto.State {
	state := dto.NewState(m.state, m.camera.Running())
	state.Version = m.version
	return state
}

// publish records a transition and returns its snapshot. It must be called
// with mu held.
func (m *Manager) publish() dto.State {
	m.version++
	return m.snapshot()
}
