package ydlidar

import "encoding/binary"

// buildScanPacketBytes assembles a well-formed wire packet (header +
// samples) with a correct checksum, for feeding into the parser under
// test.
func buildScanPacketBytes(contentType byte, firstAngleRaw, lastAngleRaw uint16, sampleRaws []uint16) []byte {
	n := len(sampleRaws)
	buf := make([]byte, posSampleData+2*n)

	buf[posHeaderLsb] = packetHeaderLo
	buf[posHeaderMsb] = packetHeaderHi
	buf[posType] = contentType
	buf[posSampleQty] = byte(n)
	binary.LittleEndian.PutUint16(buf[posStartAngle:], firstAngleRaw)
	binary.LittleEndian.PutUint16(buf[posLastAngle:], lastAngleRaw)

	for i, s := range sampleRaws {
		binary.LittleEndian.PutUint16(buf[posSampleData+2*i:], s)
	}

	ctLsn := uint16(n)<<8 | uint16(contentType)
	ph := uint16(packetHeaderLo) | uint16(packetHeaderHi)<<8
	crc := ph ^ ctLsn ^ firstAngleRaw ^ lastAngleRaw
	for _, s := range sampleRaws {
		crc ^= s
	}
	binary.LittleEndian.PutUint16(buf[posCheckSum:], crc)

	return buf
}
