package ydlidar

import "github.com/sirupsen/logrus"

// Config enumerates everything the Supervisor needs (§6). It is a plain
// struct rather than a builder: the spec treats the configuration
// surface as an external collaborator, only its contract matters.
type Config struct {
	// Transport is the serial link to the device. Required.
	Transport Transport

	// PacketHandler receives every scan packet (CT=0x00); it also
	// receives index packets when IndexPacketHandler is nil (§4.2).
	PacketHandler PacketHandler
	// IndexPacketHandler, if set, receives index packets (CT=0x01)
	// instead of PacketHandler.
	IndexPacketHandler IndexPacketHandler

	// MaxQueueElements sizes the byte queue. Default DefaultMaxQueueElements.
	MaxQueueElements int
	// TimeoutMillis is the receive-starvation watchdog deadline.
	// Default 1000.
	TimeoutMillis int64
	// AutoRestartOnTimeout selects restart() vs. stop() on TIMEOUT.
	// DefaultConfig sets it to true; a zero Config leaves it false.
	AutoRestartOnTimeout bool
	// MotorEnablePin is the GPIO driven high/low around scanning; nil
	// disables motor control entirely (the -1 sentinel from §9, modeled
	// as an optional pin rather than a magic int).
	MotorEnablePin *int

	// DebugSink and TraceSink receive diagnostics at LogDebug and
	// LogTrace respectively. Nil sinks are silent, matching the
	// source's DummyPrint default.
	DebugSink logrus.FieldLogger
	TraceSink logrus.FieldLogger
	LogLevel  LogLevel

	// GPIO is the pin-control collaborator (§6's digital_write/pin_mode
	// contract). Required only if MotorEnablePin is set.
	GPIO GPIO
}

// GPIO is the host platform's pin-control contract (§6).
type GPIO interface {
	PinMode(pin int, output bool)
	DigitalWrite(pin int, high bool)
}

// DefaultConfig returns a Config with the spec's defaults applied
// (§6): MaxQueueElements 360, TimeoutMillis 1000, AutoRestartOnTimeout
// true, motor control disabled, logging silent. Callers fill in
// Transport and at least one packet handler.
func DefaultConfig() Config {
	return Config{
		MaxQueueElements:     DefaultMaxQueueElements,
		TimeoutMillis:        1000,
		AutoRestartOnTimeout: true,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxQueueElements <= 0 {
		c.MaxQueueElements = DefaultMaxQueueElements
	}
	if c.TimeoutMillis <= 0 {
		c.TimeoutMillis = 1000
	}
	return c
}

// Option mutates a Config, in the functional-option style used to build
// up a NewConfig call one concern at a time instead of a large struct
// literal.
type Option func(*Config)

// NewConfig starts from DefaultConfig() and applies opts in order.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithTransport sets the serial link to the device.
func WithTransport(t Transport) Option {
	return func(c *Config) { c.Transport = t }
}

// WithPacketHandler sets the scan/index packet callback.
func WithPacketHandler(h PacketHandler) Option {
	return func(c *Config) { c.PacketHandler = h }
}

// WithIndexPacketHandler sets the dedicated index-packet callback.
func WithIndexPacketHandler(h IndexPacketHandler) Option {
	return func(c *Config) { c.IndexPacketHandler = h }
}

// WithMaxQueueElements overrides the byte queue's capacity.
func WithMaxQueueElements(n int) Option {
	return func(c *Config) { c.MaxQueueElements = n }
}

// WithTimeoutMillis overrides the receive-starvation watchdog deadline.
func WithTimeoutMillis(ms int64) Option {
	return func(c *Config) { c.TimeoutMillis = ms }
}

// WithAutoRestartOnTimeout selects restart() vs. stop() on TIMEOUT.
func WithAutoRestartOnTimeout(enabled bool) Option {
	return func(c *Config) { c.AutoRestartOnTimeout = enabled }
}

// WithMotorEnablePin enables motor control on the given GPIO pin.
func WithMotorEnablePin(pin int) Option {
	return func(c *Config) { c.MotorEnablePin = &pin }
}

// WithGPIO sets the pin-control collaborator used by WithMotorEnablePin.
func WithGPIO(g GPIO) Option {
	return func(c *Config) { c.GPIO = g }
}

// WithLogging sets the debug/trace sinks and the log level gating them.
func WithLogging(debug, trace logrus.FieldLogger, level LogLevel) Option {
	return func(c *Config) {
		c.DebugSink = debug
		c.TraceSink = trace
		c.LogLevel = level
	}
}
