package ydlidar

import (
	"time"

	"go.bug.st/serial"
)

// Transport is the narrow contract the Supervisor needs from the serial
// link (§6): how many bytes are waiting, read one, write a command
// frame, and drop whatever is currently buffered. It deliberately omits
// on_receive — the embedding program calls Supervisor.Receive from its
// own loop instead (as cmd/ydscan does), matching how go.bug.st/serial
// is used for this device elsewhere in the pack.
type Transport interface {
	// Available reports how many bytes can be read without blocking.
	Available() (int, error)
	// ReadByte reads a single buffered byte. Implementations must not
	// block past what Available() already reported.
	ReadByte() (byte, error)
	// Write sends a command frame to the device.
	Write(p []byte) (int, error)
	// Drain discards any bytes currently buffered by the transport,
	// mirroring the source's start()-time flush of stale bytes.
	Drain() error
}

// SerialTransport wraps a go.bug.st/serial port, matching the teacher's
// 128000-baud/8N1 configuration and DTR-based motor cue.
type SerialTransport struct {
	port serial.Port
}

// OpenSerialTransport opens portName at the YDLIDAR X4's fixed 128000
// baud, 8 data bits, no parity, one stop bit.
func OpenSerialTransport(portName string) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: 128000,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, err
	}
	return &SerialTransport{port: port}, nil
}

func (t *SerialTransport) Available() (int, error) {
	// go.bug.st/serial has no available() primitive; callers drive
	// reads through Receive, which tolerates a zero-or-one-byte-at-a-time
	// cadence, so this always reports "at least one" and lets ReadByte
	// return an error on genuine timeout.
	return 1, nil
}

func (t *SerialTransport) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errShortRead
	}
	return buf[0], nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) Drain() error {
	return t.port.ResetInputBuffer()
}

// SetDTR mirrors the teacher's DTR-based enable line for boards that
// gate the LIDAR motor through the serial adapter's DTR pin instead of a
// GPIO.
func (t *SerialTransport) SetDTR(level bool) error {
	return t.port.SetDTR(level)
}

// Close releases the underlying port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}
