package ydlidar

import "fmt"

// Supplemented from the original source and the teacher's DeviceInfo/
// HealthInfo: these decode the command-reply frames the device sends
// once in response to the info/health command bytes. They are blocking,
// used before scanning starts, and read the transport directly rather
// than going through the byte queue — the same way the teacher's
// DeviceInfo()/HealthInfo() do, since the streaming parser only ever
// runs once a scan is in progress.
const (
	infoTypeCode   = 0x04
	healthTypeCode = 0x06
)

// DeviceInfo is the decoded reply to the device-info command.
type DeviceInfo struct {
	Model    byte
	Firmware [2]byte
	Hardware byte
	Serial   [16]byte
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("model=%d firmware=%d.%d hardware=%d serial=%x",
		d.Model, d.Firmware[0], d.Firmware[1], d.Hardware, d.Serial)
}

// HealthStatus is the decoded reply to the health-status command.
type HealthStatus struct {
	StatusCode byte
	ErrorCode  [2]byte
}

// Healthy reports whether the device considers itself operating
// optimally (status code 0).
func (h HealthStatus) Healthy() bool {
	return h.StatusCode == 0
}

// replyHeader is the 7-byte command-reply header: A5 5A <len> <mode&type...>.
type replyHeader struct {
	payloadLen byte
	typeCode   byte
	mode       byte
}

func readReplyHeader(t Transport) (replyHeader, error) {
	var hdr [7]byte
	for i := range hdr {
		n, err := t.Available()
		if err != nil {
			return replyHeader{}, err
		}
		if n == 0 {
			return replyHeader{}, errShortRead
		}
		b, err := t.ReadByte()
		if err != nil {
			return replyHeader{}, err
		}
		hdr[i] = b
	}

	if hdr[0] != 0xA5 || hdr[1] != 0x5A {
		return replyHeader{}, fmt.Errorf("ydlidar: invalid reply header %02X%02X", hdr[0], hdr[1])
	}

	return replyHeader{
		payloadLen: hdr[2],
		typeCode:   hdr[6],
		mode:       (hdr[5] & 0xC0) >> 6,
	}, nil
}

func readReplyPayload(t Transport, n byte) ([]byte, error) {
	data := make([]byte, n)
	for i := range data {
		b, err := t.ReadByte()
		if err != nil {
			return nil, err
		}
		data[i] = b
	}
	return data, nil
}

// DeviceInfo queries and decodes the device-info command reply. It must
// only be called while the parser isn't scanning (the reply is read
// directly off the transport, bypassing the byte queue).
func (s *Supervisor) DeviceInfo() (*DeviceInfo, error) {
	if s.parser.isScanning() {
		return nil, ErrNotScanning
	}
	if err := s.sendCmd(cmdDeviceInfo); err != nil {
		return nil, err
	}

	hdr, err := readReplyHeader(s.transport)
	if err != nil {
		return nil, err
	}
	if hdr.typeCode != infoTypeCode {
		return nil, fmt.Errorf("%w: expected type 0x%02X got 0x%02X", ErrUnexpectedReply, infoTypeCode, hdr.typeCode)
	}

	data, err := readReplyPayload(s.transport, hdr.payloadLen)
	if err != nil {
		return nil, err
	}
	if len(data) < 20 {
		return nil, fmt.Errorf("ydlidar: device info payload too short: %d bytes", len(data))
	}

	info := &DeviceInfo{Model: data[0], Hardware: data[3]}
	copy(info.Firmware[:], data[1:3])
	copy(info.Serial[:], data[4:20])
	return info, nil
}

// HealthStatus queries and decodes the health-status command reply.
func (s *Supervisor) HealthStatus() (*HealthStatus, error) {
	if s.parser.isScanning() {
		return nil, ErrNotScanning
	}
	if err := s.sendCmd(cmdHealthStatus); err != nil {
		return nil, err
	}

	hdr, err := readReplyHeader(s.transport)
	if err != nil {
		return nil, err
	}
	if hdr.typeCode != healthTypeCode {
		return nil, fmt.Errorf("%w: expected type 0x%02X got 0x%02X", ErrUnexpectedReply, healthTypeCode, hdr.typeCode)
	}

	data, err := readReplyPayload(s.transport, hdr.payloadLen)
	if err != nil {
		return nil, err
	}
	if len(data) < 3 {
		return nil, fmt.Errorf("ydlidar: health payload too short: %d bytes", len(data))
	}

	status := &HealthStatus{StatusCode: data[0]}
	copy(status.ErrorCode[:], data[1:3])
	return status, nil
}
