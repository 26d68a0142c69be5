package ydlidar

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogLevel gates how much diagnostic detail the driver emits, mirroring
// the source's DummyPrint/LogLevel split between a silent default and an
// opt-in per-sample trace dump.
type LogLevel int

const (
	// LogNone emits nothing. Default.
	LogNone LogLevel = iota
	// LogDebug emits state transitions and error/timeout diagnostics.
	LogDebug
	// LogTrace additionally emits per-packet angle/range dumps.
	LogTrace
)

// dummyLogger is a logrus logger with output discarded, used whenever a
// sink isn't configured. It stands in for the source's DummyPrint: calls
// into it are cheap no-ops rather than nil checks scattered everywhere.
func dummyLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
