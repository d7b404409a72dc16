// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

const (
	int16Scale = 1 << 15
	int32Scale = 1 << 31
)

// Float32ToInt16 scales x by 2^15, rounds to nearest and clamps to the int16
// range, so 1.0 saturates at math.MaxInt16 and -1.0 maps to math.MinInt16.
func Float32ToInt16(x float32) int16 {
	return Float64ToInt16(float64(x))
}

// Float64ToInt16 is Float32ToInt16 for a float64 intermediate.
func Float64ToInt16(x float64) int16 {
	v := math.Round(x * int16Scale)
	switch {
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// Int16ToFloat64 maps v to v/2^15.
func Int16ToFloat64(v int16) float64 { return float64(v) / int16Scale }

// Float64ToInt32 scales x by 2^31, rounds and clamps to the int32 range.
func Float64ToInt32(x float64) int32 {
	v := math.Round(x * int32Scale)
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Int32ToFloat64 maps v to v/2^31.
func Int32ToFloat64(v int32) float64 { return float64(v) / int32Scale }

// Uint8ToFloat64 maps the biased byte v to v/255*2-1.
func Uint8ToFloat64(v uint8) float64 { return float64(v)/255*2 - 1 }

// Float64ToUint8 is the inverse of Uint8ToFloat64, rounded and clamped.
func Float64ToUint8(x float64) uint8 {
	v := math.Round((x + 1) / 2 * 255)
	switch {
	case v >= math.MaxUint8:
		return math.MaxUint8
	case v <= 0:
		return 0
	}
	return uint8(v)
}
