package field

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPointChargeOnAxis(t *testing.T) {
	q := 1e-9
	src := PointCharges{{Q: q}}

	axes := []r3.Vec{
		{X: 2}, {X: -2},
		{Y: 2}, {Y: -2},
		{Z: 2}, {Z: -2},
	}
	for _, poi := range axes {
		res, err := Evaluate(src, poi)
		require.NoError(t, err)
		assert.Equal(t, K*q/4, res.Magnitude, "poi %v", poi)
		assert.Zero(t, res.Skipped)
	}

	res, err := Evaluate(src, r3.Vec{Y: 3})
	require.NoError(t, err)
	assert.InEpsilon(t, K*q/9, res.Magnitude, 1e-14)
	assert.Greater(t, res.Field.Y, 0.0)
}

func TestSingularPointSkipsOneElement(t *testing.T) {
	rod := ChargedCurve{
		Geometry: Line{Direction: r3.Vec{X: 1}, From: 0, To: 5},
		Density:  Uniform(1e-7),
		Slices:   10,
	}
	sum, err := NewSum(rod)
	require.NoError(t, err)

	elems := sum.Elements()
	poi := elems[0].Pos
	require.Equal(t, r3.Vec{X: 0.25}, poi)

	res := sum.At(poi)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, math.IsNaN(res.Magnitude) || math.IsInf(res.Magnitude, 0))

	var want r3.Vec
	for _, e := range elems[1:] {
		d, ok := contribution(Coulomb, e, poi)
		require.True(t, ok)
		want = r3.Add(want, d)
	}
	assert.Equal(t, want, res.Field)
}

func TestSingularPointBiotSavart(t *testing.T) {
	wire := CurrentCurve{
		Geometry: Line{Direction: r3.Vec{Y: 1}, From: -1, To: 1},
		Current:  1,
		Slices:   2,
	}
	res, err := Evaluate(wire, r3.Vec{Y: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	// The remaining element is collinear with the POI.
	assert.Zero(t, res.Magnitude)
}

func TestCoincidentChargeDropsWholePair(t *testing.T) {
	charges := PointCharges{
		{Pos: r3.Vec{X: 3, Y: 3}, Q: -10e-9},
		{Pos: r3.Vec{X: -3, Y: -3}, Q: 10e-9},
	}
	res, err := Evaluate(charges, r3.Vec{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)

	only, err := Evaluate(charges[1:], r3.Vec{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, only.Field, res.Field)

	force, skipped := charges.ForceOn(PointCharge{Pos: r3.Vec{X: 3, Y: 3}, Q: 1e-9})
	assert.Equal(t, 1, skipped)
	assert.InEpsilon(t, 1e-9*only.Magnitude, r3.Norm(force), 1e-12)
}

func TestTotalChargeRoundTrip(t *testing.T) {
	q := 500e-9
	rod := Line{Direction: r3.Vec{X: 1}, From: -6, To: 6}
	arc := Arc{U: r3.Vec{X: 1}, V: r3.Vec{Y: 1}, Radius: 9, From: -math.Pi / 4, To: math.Pi / 4}

	tests := []struct {
		name string
		geom Geometry
		n    int
	}{
		{"rod n=10", rod, 10},
		{"rod n=1000", rod, 1000},
		{"arc n=200", arc, 200},
		{"ring n=360", Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 0.21), 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := ChargedCurve{Geometry: tt.geom, Density: UniformTotal(q, tt.geom), Slices: tt.n}
			elems, err := src.Elements()
			require.NoError(t, err)
			require.Len(t, elems, tt.n)
			assert.InDelta(t, q, TotalCharge(elems), 1e-9*q)
		})
	}
}

func TestElementsAtMidpoints(t *testing.T) {
	wire := CurrentCurve{
		Geometry: Line{Direction: r3.Vec{Y: 2}, From: -10, To: 10},
		Current:  1,
		Slices:   20,
	}
	elems, err := wire.Elements()
	require.NoError(t, err)

	assert.Equal(t, r3.Vec{Y: -9.5}, elems[0].Pos)
	assert.Equal(t, r3.Vec{Y: 9.5}, elems[19].Pos)
	for _, e := range elems {
		assert.Equal(t, r3.Vec{Y: 1}, e.Length)
		assert.Equal(t, 1.0, e.Current)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	rod := Line{Direction: r3.Vec{X: 1}, From: 0, To: 5}

	tests := []struct {
		name string
		src  Source
	}{
		{"zero slices", ChargedCurve{Geometry: rod, Density: Uniform(1), Slices: 0}},
		{"negative slices", CurrentCurve{Geometry: rod, Current: 1, Slices: -4}},
		{"nil density", ChargedCurve{Geometry: rod, Slices: 10}},
		{"nil geometry", CurrentCurve{Current: 1, Slices: 10}},
		{"zero length", ChargedCurve{Geometry: Line{Direction: r3.Vec{X: 1}, From: 2, To: 2}, Density: Uniform(1), Slices: 10}},
		{"zero direction", ChargedCurve{Geometry: Line{From: 0, To: 1}, Density: Uniform(1), Slices: 10}},
		{"zero radius", CurrentCurve{Geometry: Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 0), Current: 1, Slices: 10}},
		{"parallel basis", CurrentCurve{Geometry: Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Y: 2}, 1), Current: 1, Slices: 10}},
		{"skewed basis", ChargedCurve{Geometry: Ring(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, 1), Density: UniformTotal(1e-9, Ring(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, 1)), Slices: 1000}},
		{"undefined density", ChargedCurve{Geometry: rod, Density: func(p float64) float64 {
			if p > 4 {
				return math.NaN()
			}
			return 1
		}, Slices: 10}},
		{"log density at zero", ChargedCurve{Geometry: Line{Direction: r3.Vec{X: 1}, From: -1, To: 1}, Density: math.Log, Slices: 10}},
		{"no charges", PointCharges{}},
		{"nan current", CurrentCurve{Geometry: rod, Current: math.NaN(), Slices: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSum(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}

	_, err := NewSum(nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSaturate(t *testing.T) {
	v := r3.Vec{X: 3, Y: 4}

	got, clipped := Saturate(v, 1)
	assert.True(t, clipped)
	assert.InDelta(t, 1, r3.Norm(got), 1e-15)
	assert.InDelta(t, 0.6, got.X, 1e-15)
	assert.InDelta(t, 0.8, got.Y, 1e-15)

	got, clipped = Saturate(v, 10)
	assert.False(t, clipped)
	assert.Equal(t, v, got)

	got, clipped = Saturate(v, 0)
	assert.False(t, clipped)
	assert.Equal(t, v, got)
}

func TestSweepMatchesSequential(t *testing.T) {
	ring := CurrentCurve{
		Geometry: Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 0.105),
		Current:  300,
		Slices:   90,
	}
	sum, err := NewSum(ring)
	require.NoError(t, err)

	grid := Grid{
		X: Axis{From: -0.15, To: 0.15, Count: 7},
		Y: Axis{From: -0.15, To: 0.15, Count: 7},
		Z: Axis{From: -0.15, To: 0.15, Count: 7},
	}
	pois := grid.Points()
	require.Len(t, pois, 343)

	want := sum.AtAll(pois)
	for _, workers := range []int{1, 3, 8} {
		got, err := sum.Sweep(context.Background(), pois, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestSweepCanceled(t *testing.T) {
	sum, err := NewSum(PointCharges{{Q: 1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sum.Sweep(ctx, LinePoints(r3.Vec{X: 1}, r3.Vec{X: 2}, 500), 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPotentialDipole(t *testing.T) {
	dipole := PointCharges{
		{Pos: r3.Vec{X: 1}, Q: 10e-9},
		{Pos: r3.Vec{X: -1}, Q: -10e-9},
	}
	sum, err := NewSum(dipole)
	require.NoError(t, err)

	for _, poi := range LinePoints(r3.Vec{Y: -5}, r3.Vec{Y: 5}, 11) {
		pot, err := sum.PotentialAt(poi)
		require.NoError(t, err)
		assert.InDelta(t, 0, pot.Value, 1e-9)
	}

	pot, err := sum.PotentialAt(r3.Vec{X: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, pot.Skipped)
	assert.InDelta(t, K*-10e-9/2, pot.Value, 1e-9)

	wire, err := NewSum(CurrentCurve{Geometry: Line{Direction: r3.Vec{X: 1}, From: 0, To: 1}, Current: 1, Slices: 4})
	require.NoError(t, err)
	_, err = wire.PotentialAt(r3.Vec{Y: 1})
	assert.ErrorIs(t, err, ErrNotElectrostatic)
	_, err = wire.ForceAt(r3.Vec{Y: 1}, 1)
	assert.ErrorIs(t, err, ErrNotElectrostatic)
}

func TestPairForceDirection(t *testing.T) {
	a := PointCharge{Pos: r3.Vec{}, Q: 1e-9}
	b := PointCharge{Pos: r3.Vec{X: 1}, Q: 1e-9}

	f, ok := PairForce(a, b)
	require.True(t, ok)
	assert.InEpsilon(t, K*1e-18, f.X, 1e-12)

	b.Q = -1e-9
	f, ok = PairForce(a, b)
	require.True(t, ok)
	assert.Less(t, f.X, 0.0)

	_, ok = PairForce(a, a)
	assert.False(t, ok)
}

func TestGridPoints(t *testing.T) {
	g := Grid{X: Axis{From: -1, To: 1, Count: 3}, Y: Fixed(2), Z: Axis{From: 0, To: 1, Count: 2}}
	pts := g.Points()
	require.Len(t, pts, 6)
	assert.Equal(t, r3.Vec{X: -1, Y: 2, Z: 0}, pts[0])
	assert.Equal(t, r3.Vec{X: -1, Y: 2, Z: 1}, pts[1])
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 1}, pts[5])

	assert.Error(t, Grid{X: Fixed(0), Y: Fixed(0)}.Validate())
	assert.Nil(t, Axis{}.Values())
}

func TestCompositeBottle(t *testing.T) {
	coil := func(x, current float64) Source {
		return CurrentCurve{
			Geometry: Ring(r3.Vec{X: x}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 0.21),
			Current:  current,
			Slices:   360,
		}
	}
	bottle := Composite{coil(-1, -300), coil(1, 300)}

	elems, err := bottle.Elements()
	require.NoError(t, err)
	assert.Len(t, elems, 720)
	assert.Equal(t, BiotSavart, bottle.Law())

	res, err := Evaluate(bottle, r3.Vec{})
	require.NoError(t, err)
	left, err := Evaluate(bottle[0], r3.Vec{})
	require.NoError(t, err)
	assert.Greater(t, math.Abs(left.Field.X), 0.0)
	assert.InDelta(t, 0, res.Field.X, 1e-9*math.Abs(left.Field.X))

	_, err = Composite{coil(0, 1), PointCharges{{Q: 1}}}.Elements()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = Composite{}.Elements()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	withNil := Composite{nil, coil(1, 300)}
	assert.NotPanics(t, func() { withNil.Law() })
	assert.Equal(t, BiotSavart, withNil.Law())
	assert.Equal(t, Coulomb, Composite{nil}.Law())
	_, err = withNil.Elements()
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
