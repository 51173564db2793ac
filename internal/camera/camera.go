// Package camera abstracts the video devices the photo booth can capture from.
package camera

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the device refused access; the operator has to grant it.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrDeviceInit means the device exists but could not be started; retry or pick another.
	ErrDeviceInit = errors.New("camera initialization failed")

	// ErrUnknownDevice is returned by Acquire for a device ID that Devices did not list.
	ErrUnknownDevice = errors.New("unknown camera device")

	// ErrStreamStopped is returned by Snapshot after Stop.
	ErrStreamStopped = errors.New("camera stream stopped")
)

// Device describes one selectable video input.
type Device struct {
	ID    string `json:"deviceId"`
	Label string `json:"label"`
}

// Provider enumerates and acquires devices.
type Provider interface {
	Devices(ctx context.Context) ([]Device, error)
	// Acquire opens the device. Failures wrap ErrPermissionDenied or ErrDeviceInit.
	Acquire(ctx context.Context, deviceID string) (Stream, error)
}

// Stream is an acquired device. The holder must call Stop exactly when done.
type Stream interface {
	DeviceID() string
	// Snapshot grabs the current frame as a JPEG.
	Snapshot(ctx context.Context) ([]byte, error)
	// Stop releases the device. Calling Stop twice is harmless.
	Stop() error
}
