package ephemeris

import (
	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/sefile"
)

// evalSegment evaluates a decoded segment's Chebyshev series for all
// three axes at tjd, which must lie inside the segment interval. The
// time is mapped linearly onto [-1, 1]. When speed is false the velocity
// is left zero and the derivative recurrence is skipped.
func evalSegment(seg *sefile.Segment, tjd float64, speed bool) (pos, vel astro.Vec3) {
	span := seg.TEnd - seg.TStart
	x := 2*(tjd-seg.TStart)/span - 1
	n := seg.NEval
	if n <= 0 {
		return
	}

	// T_k(x) by the three-term recurrence, and its derivative when
	// velocity is wanted.
	pc := make([]float64, n)
	pc[0] = 1
	if n > 1 {
		pc[1] = x
	}
	for k := 2; k < n; k++ {
		pc[k] = 2*x*pc[k-1] - pc[k-2]
	}

	var p [3]float64
	for axis := 0; axis < 3; axis++ {
		cs := seg.Coeffs[axis]
		var sum float64
		for k := n - 1; k >= 0; k-- {
			sum += pc[k] * cs[k]
		}
		p[axis] = sum
	}
	pos = astro.Vec3{X: p[0], Y: p[1], Z: p[2]}

	if !speed {
		return
	}

	vc := make([]float64, n)
	if n > 1 {
		vc[1] = 1
	}
	for k := 2; k < n; k++ {
		vc[k] = 2*x*vc[k-1] + 2*pc[k-1] - vc[k-2]
	}
	scale := 2 / span
	var v [3]float64
	for axis := 0; axis < 3; axis++ {
		cs := seg.Coeffs[axis]
		var sum float64
		for k := n - 1; k >= 1; k-- {
			sum += vc[k] * cs[k]
		}
		v[axis] = sum * scale
	}
	vel = astro.Vec3{X: v[0], Y: v[1], Z: v[2]}
	return
}
