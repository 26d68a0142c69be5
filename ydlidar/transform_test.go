package ydlidar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngleInDegreeReferenceValues(t *testing.T) {
	assert.InDelta(t, 223.781, angleInDegree(0x6FE5), 0.001)
	assert.InDelta(t, 243.469, angleInDegree(0x79BD), 0.001)
}

func TestDistanceInMillimeterReferenceValues(t *testing.T) {
	assert.InDelta(t, 7161.25, distanceInMillimeter(0x6FE5), 0.001)
}

func TestCorrectingAngleZeroDistanceYieldsZero(t *testing.T) {
	assert.Equal(t, 0.0, correctingAngleInDegree(0))
}

func TestCorrectedAngleReferenceValues(t *testing.T) {
	fsa := angleInDegree(0x6FE5)
	dFsa := distanceInMillimeter(0x6FE5)
	corrected := fsa + correctingAngleInDegree(dFsa)
	assert.InDelta(t, 217.019, corrected, 0.01)

	lsa := angleInDegree(0x79BD)
	dLsa := distanceInMillimeter(0x79BD)
	correctedLsa := lsa + correctingAngleInDegree(dLsa)
	assert.InDelta(t, 235.631, correctedLsa, 0.01)
}

func TestCalculateRangesAndAnglesSingleSampleUsesFirstAngle(t *testing.T) {
	p := &packet{sampleCount: 1}
	p.samples[0] = 0x0000

	ranges := make([]float64, 1)
	angles := make([]float64, 1)
	calculateRangesAndAngles(p, 10.0, 20.0, ranges, angles)

	assert.Equal(t, 0.0, ranges[0])
	assert.Equal(t, 10.0, angles[0])
}

func TestCalculateRangesAndAnglesInterpolatesEvenly(t *testing.T) {
	p := &packet{sampleCount: 3}
	// All zero-distance samples so correction doesn't perturb the angle.
	ranges := make([]float64, 3)
	angles := make([]float64, 3)
	calculateRangesAndAngles(p, 0.0, 90.0, ranges, angles)

	assert.InDelta(t, 0.0, angles[0], 1e-9)
	assert.InDelta(t, 45.0, angles[1], 1e-9)
	assert.InDelta(t, 90.0, angles[2], 1e-9)
}
