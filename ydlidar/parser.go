package ydlidar

import (
	"github.com/sirupsen/logrus"
)

// parserState is one state of the resynchronizing packet parser (§4.2).
type parserState int

const (
	stateIdle parserState = iota
	stateReady
	stateStart
	stateStartNeedMoreData
	stateStartCheckPacket
	stateStartRemovePacket
	stateScanNeedHeader
	stateScanNeedSize
	stateScanNeedData
	stateScanCheckCRC
	stateScanSendMessage
	stateStop
	stateTimeout
	stateEnd
	stateError
)

func (s parserState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateReady:
		return "Ready"
	case stateStart:
		return "Start"
	case stateStartNeedMoreData:
		return "StartNeedMoreData"
	case stateStartCheckPacket:
		return "StartCheckPacket"
	case stateStartRemovePacket:
		return "StartRemovePacket"
	case stateScanNeedHeader:
		return "ScanNeedHeader"
	case stateScanNeedSize:
		return "ScanNeedSize"
	case stateScanNeedData:
		return "ScanNeedData"
	case stateScanCheckCRC:
		return "ScanCheckCrc"
	case stateScanSendMessage:
		return "ScanSendMessages"
	case stateStop:
		return "Stop"
	case stateTimeout:
		return "Timeout"
	case stateEnd:
		return "End"
	default:
		return "Error"
	}
}

// PacketHandler receives a decoded scan packet: the first/last raw sample
// angle in degrees, and per-sample corrected angles/ranges. angles and
// ranges share length N and are only valid for the duration of the call.
type PacketHandler func(firstAngleDeg, lastAngleDeg float64, anglesDeg, rangesMM []float64)

// IndexPacketHandler receives the single corrected angle/range pair of a
// zero-point index packet (CT=0x01).
type IndexPacketHandler func(angleDeg, rangeMM float64)

// parser is the single-threaded, cooperatively scheduled state machine
// driving frame resynchronization and CRC validation over a byteQueue. It
// performs no dynamic allocation in the hot path: the packet scratch and
// the per-callback angle/range arrays are preallocated fields reused
// across packets.
type parser struct {
	queue *byteQueue
	state parserState

	pkt          packet
	rawScratch   [maxPacketSize]byte
	expectedSize int

	anglesScratch [maxSamplesPerPacket]float64
	rangesScratch [maxSamplesPerPacket]float64

	packetHandler      PacketHandler
	indexPacketHandler IndexPacketHandler

	debug    logrus.FieldLogger
	trace    logrus.FieldLogger
	logLevel LogLevel

	// onPacketDispatched, if set, is called after every successful
	// packet dispatch (used by the Supervisor to reset its restart
	// backoff once the stream is healthy again).
	onPacketDispatched func()
}

func newParser(q *byteQueue, packetHandler PacketHandler, indexPacketHandler IndexPacketHandler, debug, trace logrus.FieldLogger, logLevel LogLevel) *parser {
	return &parser{
		queue:              q,
		state:              stateIdle,
		packetHandler:      packetHandler,
		indexPacketHandler: indexPacketHandler,
		debug:              debug,
		trace:              trace,
		logLevel:           logLevel,
	}
}

func (p *parser) setState(s parserState) {
	if p.debug != nil && p.state != s {
		p.debug.Debugf("set state %s -> %s", p.state, s)
	}
	p.state = s
}

func (p *parser) setStateIdle()    { p.setState(stateIdle) }
func (p *parser) setStateStop()    { p.setState(stateStop) }
func (p *parser) setStateTimeout() { p.setState(stateTimeout) }
func (p *parser) setStateError()   { p.setState(stateError) }

func (p *parser) hasError() bool   { return p.state == stateError }
func (p *parser) hasTimeout() bool { return p.state == stateTimeout }

// isScanning reports whether the parser is anywhere in the active
// start/scan pipeline (used by the Supervisor's watchdog check).
func (p *parser) isScanning() bool {
	switch p.state {
	case stateReady, stateStart, stateStartNeedMoreData, stateStartCheckPacket,
		stateStartRemovePacket, stateScanNeedHeader, stateScanNeedSize,
		stateScanNeedData, stateScanCheckCRC, stateScanSendMessage:
		return true
	default:
		return false
	}
}

// step performs at most one state transition or one consumption of the
// queue head and returns whether the state changed.
func (p *parser) step() bool {
	old := p.state
	p.state = p.handle()
	return p.state != old
}

func (p *parser) handle() parserState {
	switch p.state {
	case stateIdle:
		return p.handleIdle()
	case stateReady:
		return p.handleReady()
	case stateStart:
		return p.handleStart()
	case stateStartNeedMoreData:
		return p.handleStartNeedMoreData()
	case stateStartCheckPacket:
		return p.handleStartCheckPacket()
	case stateStartRemovePacket:
		return p.handleStartRemovePacket()
	case stateScanNeedHeader:
		return p.handleScanNeedHeader()
	case stateScanNeedSize:
		return p.handleScanNeedSize()
	case stateScanNeedData:
		return p.handleScanNeedData()
	case stateScanCheckCRC:
		return p.handleScanCheckCRC()
	case stateScanSendMessage:
		return p.handleScanSendMessage()
	case stateStop:
		return p.handleStop()
	case stateTimeout:
		return stateTimeout
	case stateEnd:
		return stateEnd
	default:
		return stateError
	}
}

func (p *parser) handleIdle() parserState {
	p.queue.clear()
	return stateReady
}

func (p *parser) handleReady() parserState {
	if p.queue.size() == 0 {
		return stateReady
	}
	return stateStart
}

func (p *parser) handleStart() parserState {
	b0 := p.queue.peek(0)
	if b0 != 0xA5 {
		if b0 == packetHeaderLo {
			if p.queue.size() > 1 && p.queue.peek(1) == packetHeaderHi {
				// The start-response handshake is sometimes lost; a bare
				// scan header here is tolerated and we jump straight in.
				return stateScanNeedSize
			}
			return stateStart
		}
		return stateError
	}
	return stateStartNeedMoreData
}

func (p *parser) handleStartNeedMoreData() parserState {
	if p.queue.size() < startHeaderSize {
		return stateStartNeedMoreData
	}
	return stateStartCheckPacket
}

func (p *parser) handleStartCheckPacket() parserState {
	for i := 0; i < startHeaderSize; i++ {
		if p.queue.peek(i) != startResponse[i] {
			if p.debug != nil {
				p.debug.Debug("incorrect start response")
			}
			return stateError
		}
	}
	return stateStartRemovePacket
}

func (p *parser) handleStartRemovePacket() parserState {
	if p.queue.size() < startHeaderSize {
		return stateError
	}
	p.queue.drop(startHeaderSize)
	return stateScanNeedSize
}

// handleScanNeedHeader is the resynchronization crux (§4.2): when the
// head byte isn't 0xAA it tries, in order, a command-reply skip, a
// leading-zero skip, before giving up and declaring ERROR.
func (p *parser) handleScanNeedHeader() parserState {
	if p.queue.size() <= posHeaderMsb {
		return stateScanNeedHeader
	}
	b0 := p.queue.peek(0)
	if b0 != packetHeaderLo {
		if p.debug != nil {
			p.debug.Debugf("packet start not 0xAA, got 0x%02X", b0)
		}

		if b0 == 0xA5 {
			if p.queue.peek(1) != 0x5A {
				return stateError
			}
			if p.queue.size() < 3 {
				// Not enough bytes yet to read the length field; retry.
				return stateScanNeedHeader
			}
			toDrop := int(p.queue.peek(2)) + 7
			if p.queue.size() < toDrop {
				return stateScanNeedHeader
			}
			if p.debug != nil {
				p.debug.Debugf("dropping %d bytes of command-reply frame", toDrop)
			}
			p.queue.drop(toDrop)
			return stateScanNeedHeader
		}

		if b0 == 0x00 {
			dropped := 0
			for p.queue.size() > 0 && p.queue.peek(0) == 0x00 {
				p.queue.drop(1)
				dropped++
			}
			if p.debug != nil {
				p.debug.Debugf("dropped %d leading zero bytes", dropped)
			}
			return stateScanNeedHeader
		}

		return stateError
	}
	if p.queue.peek(1) != packetHeaderHi {
		if p.debug != nil {
			p.debug.Debug("packet start not 0xAA 0x55")
		}
		return stateError
	}
	return stateScanNeedSize
}

func (p *parser) handleScanNeedSize() parserState {
	if p.queue.size() <= posSampleQty {
		return stateScanNeedSize
	}
	sampleQty := p.queue.peek(posSampleQty)
	p.expectedSize = posSampleData + 2*int(sampleQty)
	return stateScanNeedData
}

func (p *parser) handleScanNeedData() parserState {
	if p.queue.size() < p.expectedSize {
		return stateScanNeedData
	}
	return stateScanCheckCRC
}

func (p *parser) handleScanCheckCRC() parserState {
	if !p.queue.extract(p.rawScratch[:], p.expectedSize) {
		return stateError
	}
	p.pkt.decodeFrom(p.rawScratch[:p.expectedSize])
	if !p.pkt.validChecksum() {
		if p.debug != nil {
			p.debug.Debugf("crc mismatch: calc 0x%04X pkg 0x%04X", p.pkt.checksum(), p.pkt.checkSum)
		}
		return stateError
	}
	return stateScanSendMessage
}

func (p *parser) handleScanSendMessage() parserState {
	p.dispatchValidPacket()
	return stateScanNeedHeader
}

func (p *parser) dispatchValidPacket() {
	n := int(p.pkt.sampleCount)
	firstAngle := angleInDegree(p.pkt.firstAngle)
	lastAngle := angleInDegree(p.pkt.lastAngle)

	angles := p.anglesScratch[:n]
	ranges := p.rangesScratch[:n]
	calculateRangesAndAngles(&p.pkt, firstAngle, lastAngle, ranges, angles)

	if p.trace != nil && p.logLevel == LogTrace {
		p.trace.Debugf("packet type=%d angles %.3f-%.3f° samples=%d", p.pkt.contentType, firstAngle, lastAngle, n)
	}

	if p.onPacketDispatched != nil {
		defer p.onPacketDispatched()
	}

	if p.pkt.contentType == packetTypeIndex {
		if n == 0 {
			// An index packet is defined to carry exactly one sample;
			// with none, there's nothing to report to either callback.
			return
		}
		if p.indexPacketHandler != nil {
			p.indexPacketHandler(angles[0], ranges[0])
			return
		}
		if p.packetHandler != nil {
			p.packetHandler(firstAngle, lastAngle, angles, ranges)
		}
		return
	}

	if p.packetHandler != nil {
		p.packetHandler(firstAngle, lastAngle, angles, ranges)
	}
}

func (p *parser) handleStop() parserState {
	p.queue.clear()
	return stateEnd
}
