package ydlidar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigAppliesDefaultsThenOptions(t *testing.T) {
	tr := &fakeTransport{}
	cfg := NewConfig(
		WithTransport(tr),
		WithTimeoutMillis(2500),
		WithAutoRestartOnTimeout(false),
	)

	assert.Equal(t, DefaultMaxQueueElements, cfg.MaxQueueElements) // untouched default
	assert.Equal(t, int64(2500), cfg.TimeoutMillis)
	assert.False(t, cfg.AutoRestartOnTimeout)
	assert.Same(t, tr, cfg.Transport)
}

func TestWithMotorEnablePinSetsPointer(t *testing.T) {
	cfg := NewConfig(WithMotorEnablePin(7))
	require.NotNil(t, cfg.MotorEnablePin)
	assert.Equal(t, 7, *cfg.MotorEnablePin)
}

func TestNewSupervisorWithOptionsWritesStartScanCommand(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSupervisorWithOptions(
		WithTransport(tr),
		WithMaxQueueElements(512),
	)

	require.True(t, s.Start())
	assert.Equal(t, cmdStartScan, tr.lastWrite())
}
