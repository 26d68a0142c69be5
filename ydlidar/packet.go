package ydlidar

// Wire-level constants for the YDLIDAR X4 protocol. See:
// https://www.ydlidar.com/Public/upload/files/2022-06-28/YDLIDAR%20X4%20Development%20Manual%20V1.6(211230).pdf
const (
	packetHeaderLo = 0xAA
	packetHeaderHi = 0x55

	packetTypeScan  = 0x00
	packetTypeIndex = 0x01

	// The pos* constants are the byte offsets of the fixed header fields.
	posHeaderLsb  = 0
	posHeaderMsb  = 1
	posType       = 2
	posSampleQty  = 3
	posStartAngle = 4
	posLastAngle  = 6
	posCheckSum   = 8
	posSampleData = 10

	maxSamplesPerPacket = 256
	// maxPacketSize is the 10-byte header plus 2 bytes for each of
	// maxSamplesPerPacket samples (522 bytes), two bytes more than the
	// largest wire packet, whose single-byte LSN caps N at 255.
	maxPacketSize = posSampleData + 2*maxSamplesPerPacket

	startHeaderSize = 7
)

// startResponse is the literal 7-byte handshake the device emits once in
// reply to the start-scan command.
var startResponse = [startHeaderSize]byte{0xA5, 0x5A, 0x05, 0x00, 0x00, 0x40, 0x81}

// Command frames the driver writes to the device. All are 2 bytes.
var (
	cmdStartScan    = []byte{0xA5, 0x60}
	cmdStopScan     = []byte{0xA5, 0x65}
	cmdDeviceInfo   = []byte{0xA5, 0x90}
	cmdHealthStatus = []byte{0xA5, 0x91}
	cmdSoftReboot   = []byte{0xA5, 0x80}
)

// packet is the parser's reusable scratch buffer for one decoded scan
// packet. Its lifetime equals the parser's; it is never reallocated
// per-packet.
type packet struct {
	contentType  uint8
	sampleCount  uint8
	firstAngle   uint16
	lastAngle    uint16
	checkSum     uint16
	samples      [maxSamplesPerPacket]uint16
	expectedSize int
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// decodeFrom parses rawData (exactly the parser's expectedSize bytes, as
// extracted from the byte queue) into the packet's fields.
func (p *packet) decodeFrom(rawData []byte) {
	p.contentType = rawData[posType]
	p.sampleCount = rawData[posSampleQty]
	p.firstAngle = le16(rawData[posStartAngle:])
	p.lastAngle = le16(rawData[posLastAngle:])
	p.checkSum = le16(rawData[posCheckSum:])
	for i := 0; i < int(p.sampleCount); i++ {
		off := posSampleData + 2*i
		p.samples[i] = le16(rawData[off : off+2])
	}
}

// checksum computes the 16-bit XOR across PH, (LSN<<8)|CT, FSA, LSA and
// every sample word, excluding the CS field itself (§3).
func (p *packet) checksum() uint16 {
	ctLsn := uint16(p.sampleCount)<<8 | uint16(p.contentType)
	ph := uint16(packetHeaderLo) | uint16(packetHeaderHi)<<8

	crc := ph
	crc ^= ctLsn
	crc ^= p.firstAngle
	crc ^= p.lastAngle
	for i := 0; i < int(p.sampleCount); i++ {
		crc ^= p.samples[i]
	}
	return crc
}

func (p *packet) validChecksum() bool {
	return p.checksum() == p.checkSum
}
