// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x in
// [0, 1], where x=0 is y1 and x=1 is y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a := 0.5 * (3*(y1-y2) + y3 - y0)
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := 0.5 * (y2 - y0)

	return ((a*x+b)*x+c)*x + y1
}

// CubicInterpolateFrames interpolates every channel of four consecutive
// interleaved frames into dst. All slices must have len(dst) elements.
func CubicInterpolateFrames(dst, f0, f1, f2, f3 []float32, x float32) {
	f0, f1, f2, f3 = f0[:len(dst)], f1[:len(dst)], f2[:len(dst)], f3[:len(dst)]
	for c := range dst {
		dst[c] = CubicInterpolate(f0[c], f1[c], f2[c], f3[c], x)
	}
}
