package ydlidar

import "math"

// angleInDegree decodes a raw encoded angle field into degrees (§3):
// degrees = (raw >> 1) / 64.0.
func angleInDegree(raw uint16) float64 {
	return float64(raw>>1) / 64.0
}

// distanceInMillimeter decodes a raw encoded sample word into millimetres
// (§3): mm = raw / 4.0.
func distanceInMillimeter(raw uint16) float64 {
	return float64(raw) / 4.0
}

// correctingAngleInDegree applies the manufacturer's distance-dependent
// angle correction (§3). At d = 0mm the correction is defined to be 0 so
// the singularity in the formula never propagates a NaN.
func correctingAngleInDegree(distanceMM float64) float64 {
	if distanceMM == 0 {
		return 0
	}
	radians := math.Atan(21.8 * (155.3 - distanceMM) / (155.3 * distanceMM))
	return radians * 180.0 / math.Pi
}

// calculateRangesAndAngles converts a validated packet's sampleCount raw
// sample words into per-sample (angle°, distance mm) pairs, interpolating
// each sample's raw angle between firstAngleDeg and lastAngleDeg and then
// applying the angle correction (§3). ranges and angles must each have
// length >= sampleCount; no allocation happens here.
func calculateRangesAndAngles(p *packet, firstAngleDeg, lastAngleDeg float64, ranges, angles []float64) {
	n := int(p.sampleCount)
	for i := 0; i < n; i++ {
		d := distanceInMillimeter(p.samples[i])
		ranges[i] = d

		var a float64
		if n == 1 {
			a = firstAngleDeg
		} else {
			a = firstAngleDeg + float64(i)*(lastAngleDeg-firstAngleDeg)/float64(n-1)
		}
		angles[i] = a + correctingAngleInDegree(d)
	}
}
