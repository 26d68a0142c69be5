package ydlidar

import "errors"

var (
	// errQueueFull is returned internally when the byte queue rejects a
	// push; the Supervisor turns this into a parser ERROR transition.
	errQueueFull = errors.New("ydlidar: byte queue full")
	// errShortRead signals a transport read that returned no byte
	// despite being reported available; treated as a transient, retried
	// on the next receive notification.
	errShortRead = errors.New("ydlidar: short read from transport")
	// ErrNotScanning is returned by operations that require the device
	// not to be scanning (the device info and health queries) when they
	// are called while a scan is running.
	ErrNotScanning = errors.New("ydlidar: operation not allowed while scanning")
	// ErrUnexpectedReply is returned when a command-reply frame doesn't
	// match the expected type code.
	ErrUnexpectedReply = errors.New("ydlidar: unexpected command reply")
)
