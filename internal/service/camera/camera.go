package camera

import (
	"errors"
	"fmt"
	"plantidentifier/internal/config"
	"plantidentifier/internal/logger"
	"plantidentifier/internal/model"
	"sync"
	"time"
)

var (
	// ErrUnavailable wraps every failure to open the camera device.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrNotStarted is returned by Capture before Start succeeded.
	ErrNotStarted = errors.New("camera is not started")
	// ErrNoFrame is returned by Capture when no frame has been read yet.
	ErrNoFrame = errors.New("no camera frame available yet")
)

// FrameSource yields JPEG-encoded frames from a video device.
type FrameSource interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// Opener opens the camera device. It is called on every Start.
type Opener func() (FrameSource, error)

// FrameBroadcaster receives every frame read from the device.
type FrameBroadcaster interface {
	BroadcastFrame(frame []byte)
}

// Service reads frames from the camera in the background, keeps the latest
// one and forwards each frame to live viewers.
type Service struct {
	open     Opener
	viewers  FrameBroadcaster
	logger   *logger.Logger
	interval time.Duration

	mu     sync.Mutex
	source FrameSource
	latest []byte
	stop   chan struct{}
	done   chan struct{}
}

func NewService(open Opener, viewers FrameBroadcaster, config *config.Config, logger *logger.Logger) *Service {
	fps := config.CameraFPS
	if fps <= 0 {
		fps = 10
	}
	return &Service{
		open:     open,
		viewers:  viewers,
		logger:   logger,
		interval: time.Second / time.Duration(fps),
	}
}

// Start opens the device and starts the frame loop. Starting a running camera is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source != nil {
		return nil
	}

	source, err := s.open()
	if err != nil {
		s.logger.Error("Error accessing camera: %v", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.source = source
	s.latest = nil
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(source, s.stop, s.done)

	s.logger.Info("📷 Camera started, reading a frame every %v", s.interval)
	return nil
}

func (s *Service) run(source FrameSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, err := source.ReadFrame()
			if err != nil {
				if !failing {
					s.logger.Warning("Error reading camera frame: %v", err)
					failing = true
				}
				continue
			}
			failing = false

			s.mu.Lock()
			s.latest = frame
			s.mu.Unlock()

			s.viewers.BroadcastFrame(frame)
		}
	}
}

// Capture turns the most recent frame into an image payload.
func (s *Service) Capture() (model.ImagePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return model.ImagePayload{}, ErrNotStarted
	}
	if len(s.latest) == 0 {
		return model.ImagePayload{}, ErrNoFrame
	}

	data := make([]byte, len(s.latest))
	copy(data, s.latest)

	return model.ImagePayload{
		Data:       data,
		MediaType:  "image/jpeg",
		Source:     model.SourceCamera,
		CapturedAt: time.Now(),
	}, nil
}

// Running reports whether the frame loop is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}

// Stop ends the frame loop and releases the device.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return nil
	}
	source, stop, done := s.source, s.stop, s.done
	s.source = nil
	s.latest = nil
	s.mu.Unlock()

	close(stop)
	<-done

	s.logger.Info("📷 Camera stopped")
	return source.Close()
}
