package field

import "gonum.org/v1/gonum/spatial/r3"

// PairForce is the Coulomb force exerted by src on target. ok is false when
// the two charges coincide, in which case the pair contributes nothing.
func PairForce(src, target PointCharge) (r3.Vec, bool) {
	r := r3.Sub(target.Pos, src.Pos)
	dist, ok := resolve(r)
	if !ok {
		return r3.Vec{}, false
	}
	return r3.Scale(K*src.Q*target.Q/(dist*dist*dist), r), true
}

// ForceOn sums the pairwise forces of every charge in pc on target. Charges
// sitting on target are dropped whole and counted in skipped.
func (pc PointCharges) ForceOn(target PointCharge) (force r3.Vec, skipped int) {
	for _, c := range pc {
		f, ok := PairForce(c, target)
		if !ok {
			skipped++
			continue
		}
		force = r3.Add(force, f)
	}
	return force, skipped
}

// ForceAt returns the force on a test charge q placed at poi.
func (s *Sum) ForceAt(poi r3.Vec, q float64) (r3.Vec, error) {
	if s.law != Coulomb {
		return r3.Vec{}, ErrNotElectrostatic
	}
	return r3.Scale(q, s.At(poi).Field), nil
}
