package field

import "gonum.org/v1/gonum/spatial/r3"

// Saturate returns a display copy of v clipped to magnitude limit, keeping its
// direction. The second value reports whether clipping happened. A limit <= 0
// disables clipping.
func Saturate(v r3.Vec, limit float64) (r3.Vec, bool) {
	if limit <= 0 {
		return v, false
	}
	mag := r3.Norm(v)
	if mag <= limit {
		return v, false
	}
	return r3.Scale(limit/mag, v), true
}
