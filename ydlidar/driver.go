package ydlidar

import (
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// nowMillis is the monotonic millisecond clock contract from §6
// (now_ms()); overridable in tests.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// Supervisor owns the byte queue, the parser, the motor-enable line, the
// serial transport and the receive watchdog, and coordinates the device
// lifecycle (§4.4).
type Supervisor struct {
	queue  *byteQueue
	parser *parser

	transport Transport
	gpio      GPIO
	motorPin  *int

	timeoutMillis        int64
	autoRestartOnTimeout bool

	lastReceiveWallMs    int64 // atomic
	maxObservedQueueSize int64 // atomic

	restartBackoff *backoff.ExponentialBackOff
	nextRestartAt  int64 // unix millis; 0 means "no backoff pending"

	debug logrus.FieldLogger
}

// NewSupervisor builds a Supervisor from cfg, applying the spec's
// defaults (§6) for any zero-valued numeric field.
func NewSupervisor(cfg Config) *Supervisor {
	cfg = cfg.withDefaults()

	debug := cfg.DebugSink
	if debug == nil || cfg.LogLevel < LogDebug {
		debug = dummyLogger()
	}
	trace := cfg.TraceSink
	if trace == nil {
		trace = dummyLogger()
	}

	q := newByteQueue(cfg.MaxQueueElements)
	p := newParser(q, cfg.PacketHandler, cfg.IndexPacketHandler, debug, trace, cfg.LogLevel)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // never give up; the watchdog keeps retrying

	s := &Supervisor{
		queue:                q,
		parser:               p,
		transport:            cfg.Transport,
		gpio:                 cfg.GPIO,
		motorPin:             cfg.MotorEnablePin,
		timeoutMillis:        cfg.TimeoutMillis,
		autoRestartOnTimeout: cfg.AutoRestartOnTimeout,
		restartBackoff:       bo,
		debug:                debug,
	}
	p.onPacketDispatched = s.resetRestartBackoff

	if s.motorPin != nil {
		s.tryPinMode()
		s.tryDisableMotor()
	}
	return s
}

// NewSupervisorWithOptions builds a Supervisor from NewConfig(opts...),
// for callers that prefer assembling the configuration option-by-option
// instead of a Config struct literal.
func NewSupervisorWithOptions(opts ...Option) *Supervisor {
	return NewSupervisor(NewConfig(opts...))
}

func (s *Supervisor) tryPinMode() {
	if s.motorPin == nil || s.gpio == nil {
		return
	}
	s.gpio.PinMode(*s.motorPin, true)
}

func (s *Supervisor) tryEnableMotor() {
	if s.motorPin == nil || s.gpio == nil {
		return
	}
	s.gpio.DigitalWrite(*s.motorPin, true)
}

func (s *Supervisor) tryDisableMotor() {
	if s.motorPin == nil || s.gpio == nil {
		return
	}
	s.gpio.DigitalWrite(*s.motorPin, false)
}

func (s *Supervisor) sendCmd(cmd []byte) error {
	if s.transport == nil {
		return nil
	}
	_, err := s.transport.Write(cmd)
	return err
}

// Start resets the parser, drains any stale bytes already buffered by
// the transport, resets the watchdog stats, enables the motor, and
// writes the start-scan command (§4.4).
func (s *Supervisor) Start() bool {
	return s.startInternal(true)
}

// startInternal always performs the parser reset, transport drain and
// stats reset; writeCmd gates only the physical start-scan command frame
// and the GPIO motor-enable line, so a throttled restart (see handleTimeout)
// still escalates the parser out of whatever state it was stuck in.
func (s *Supervisor) startInternal(writeCmd bool) bool {
	s.parser.setStateIdle()

	if s.transport != nil {
		_ = s.transport.Drain()
	}

	atomic.StoreInt64(&s.lastReceiveWallMs, nowMillis())
	atomic.StoreInt64(&s.maxObservedQueueSize, 0)

	if writeCmd {
		s.tryEnableMotor()
		_ = s.sendCmd(cmdStartScan)
	}
	return true
}

// Stop writes the stop-scan command, drives the parser to STOP (which
// clears the queue on its next step), and disables the motor (§4.4).
func (s *Supervisor) Stop() bool {
	return s.stopInternal(true)
}

func (s *Supervisor) stopInternal(writeCmd bool) bool {
	if writeCmd {
		_ = s.sendCmd(cmdStopScan)
		s.tryDisableMotor()
	}
	s.parser.setStateStop()
	return true
}

// Restart is Stop() followed by Start().
func (s *Supervisor) Restart() bool {
	if s.debug != nil {
		s.debug.Debug("restarting lidar")
	}
	return s.restartInternal(true)
}

func (s *Supervisor) restartInternal(writeCmd bool) bool {
	stopped := s.stopInternal(writeCmd)
	started := s.startInternal(writeCmd)
	return stopped && started
}

// RequestDeviceInfo writes the device-info command frame.
func (s *Supervisor) RequestDeviceInfo() bool {
	return s.sendCmd(cmdDeviceInfo) == nil
}

// RequestHealthStatus writes the health-status command frame.
func (s *Supervisor) RequestHealthStatus() bool {
	return s.sendCmd(cmdHealthStatus) == nil
}

// RequestSoftReboot writes the soft-reboot command frame.
func (s *Supervisor) RequestSoftReboot() bool {
	return s.sendCmd(cmdSoftReboot) == nil
}

// Receive is the producer-side entry point: it reads every currently
// available byte from the transport and pushes it into the queue. If
// the queue refuses a byte (full), the parser is driven to ERROR and
// Receive returns immediately (§4.4, §7).
func (s *Supervisor) Receive() error {
	if s.transport == nil {
		return nil
	}

	n, err := s.transport.Available()
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		b, err := s.transport.ReadByte()
		if err != nil {
			// A short/absent read mid-drain is not fatal: no state
			// change, retried on the next notification (§7).
			return nil
		}
		if !s.queue.push(b) {
			if s.debug != nil {
				s.debug.Debug("could not add data to lidar queue")
			}
			s.parser.setStateError()
			return errQueueFull
		}
		s.recordReceiveStats()
	}
	return nil
}

func (s *Supervisor) recordReceiveStats() {
	atomic.StoreInt64(&s.lastReceiveWallMs, nowMillis())
	size := int64(s.queue.size())
	for {
		prev := atomic.LoadInt64(&s.maxObservedQueueSize)
		if size <= prev || atomic.CompareAndSwapInt64(&s.maxObservedQueueSize, prev, size) {
			break
		}
	}
}

// RunOnce steps the parser once, then handles any resulting escalation:
// ERROR is checked before TIMEOUT, and the watchdog check runs last so a
// same-tick ERROR can't be masked by a spurious timeout (§4.4).
func (s *Supervisor) RunOnce() bool {
	changed := s.parser.step()

	if s.parser.hasError() {
		if s.debug != nil {
			s.debug.Debugf("lidar error, stopping: %s", s.queue)
		}
		s.Stop()
		return changed
	}

	if s.parser.hasTimeout() {
		s.handleTimeout()
		return changed
	}

	s.checkReceiveTimeout()
	return changed
}

// handleTimeout always escalates out of TIMEOUT on every tick it's
// observed, per spec — the parser must never be left sitting in TIMEOUT
// waiting on the Supervisor. The cenkalti/backoff cooldown only rate-limits
// the physical side effects of a repeated restart (the command frame
// written to the device and the motor-enable line): once the cooldown is
// still pending, restart()/stop() still run and still reset the parser's
// state, they just skip re-sending hardware commands until the backoff
// window elapses.
func (s *Supervisor) handleTimeout() {
	now := nowMillis()
	writeCmd := atomic.LoadInt64(&s.nextRestartAt) <= now

	if s.autoRestartOnTimeout {
		s.restartInternal(writeCmd)
	} else {
		s.stopInternal(writeCmd)
	}

	if writeCmd {
		delay := s.restartBackoff.NextBackOff()
		atomic.StoreInt64(&s.nextRestartAt, now+delay.Milliseconds())
	}
}

func (s *Supervisor) checkReceiveTimeout() {
	if !s.parser.isScanning() {
		return
	}
	last := atomic.LoadInt64(&s.lastReceiveWallMs)
	if nowMillis()-last > s.timeoutMillis {
		if s.debug != nil {
			s.debug.Debugf("timeout detected: state=%s queue=%d/%d", s.parser.state, s.queue.size(), s.queue.Capacity())
		}
		s.parser.setStateTimeout()
	}
}

// Run steps RunOnce until a tick reports no state change (the local
// fixed point, §4.2's step semantics).
func (s *Supervisor) Run() {
	for s.RunOnce() {
	}
}

// resetRestartBackoff clears the throttle once scanning is healthy
// again. Called from the parser dispatch path via onPacketDispatched.
func (s *Supervisor) resetRestartBackoff() {
	s.restartBackoff.Reset()
	atomic.StoreInt64(&s.nextRestartAt, 0)
}

// IsScanning reports whether the parser is anywhere in the active
// start/scan pipeline.
func (s *Supervisor) IsScanning() bool {
	return s.parser.isScanning()
}

// State returns the parser's current state name, for diagnostics.
func (s *Supervisor) State() string {
	return s.parser.state.String()
}

// QueueSize returns the number of bytes currently buffered.
func (s *Supervisor) QueueSize() int {
	return s.queue.size()
}

// QueueCapacity returns the byte queue's fixed capacity.
func (s *Supervisor) QueueCapacity() int {
	return s.queue.Capacity()
}

// MaxObservedQueueSize returns the largest queue occupancy seen since
// the last Start().
func (s *Supervisor) MaxObservedQueueSize() int {
	return int(atomic.LoadInt64(&s.maxObservedQueueSize))
}
