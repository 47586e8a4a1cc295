// Package device reads frames from a local video device through OpenCV.
package device

import (
	"errors"
	"fmt"
	"plantidentifier/internal/service/camera"

	"gocv.io/x/gocv"
)

// Camera is a camera.FrameSource backed by gocv.VideoCapture.
type Camera struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// Open opens the video device with the given index.
func Open(deviceID int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %d: %w", deviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video device %d is not available", deviceID)
	}

	return &Camera{
		capture: capture,
		frame:   gocv.NewMat(),
	}, nil
}

// Opener returns a camera.Opener for the given device index.
func Opener(deviceID int) camera.Opener {
	return func() (camera.FrameSource, error) {
		c, err := Open(deviceID)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ReadFrame grabs the current frame at the device's native size and encodes it as JPEG.
func (c *Camera) ReadFrame() ([]byte, error) {
	if ok := c.capture.Read(&c.frame); !ok {
		return nil, errors.New("failed to read frame from video device")
	}
	if c.frame.Empty() {
		return nil, errors.New("video device returned an empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the frame buffer and the device.
func (c *Camera) Close() error {
	if err := c.frame.Close(); err != nil {
		return err
	}
	return c.capture.Close()
}
