package field

import "math"

const (
	// K is Coulomb's constant in N·m²/C².
	K = 8.99e9

	// Mu0 is the vacuum permeability in T·m/A.
	Mu0 = 4 * math.Pi * 1e-7

	// BiotSavartPrefactor is μ0/4π.
	BiotSavartPrefactor = Mu0 / (4 * math.Pi)
)
