package analytic_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/field"
)

func percentDiffs(build func(n int) field.Source, poi r3.Vec, want float64, slices ...int) []float64 {
	pds := make([]float64, len(slices))
	for i, n := range slices {
		res, err := field.Evaluate(build(n), poi)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Skipped).To(BeZero())
		pds[i] = analytic.Compare(res.Magnitude, want).AbsPercentDiff()
	}
	return pds
}

func expectNonIncreasing(pds []float64, slack float64) {
	for i := 1; i < len(pds); i++ {
		Expect(pds[i]).To(BeNumerically("<=", pds[i-1]+slack), "percent diffs %v", pds)
	}
}

var _ = Describe("discretized sums", func() {
	Context("straight wire, 20 m along y, I = 1 A", func() {
		wire := func(n int) field.Source {
			return field.CurrentCurve{
				Geometry: field.Line{Direction: r3.Vec{Y: 1}, From: -10, To: 10},
				Current:  1,
				Slices:   n,
			}
		}
		poi := r3.Vec{X: 5}

		It("lands near the infinite-wire value at N=200", func() {
			Expect(analytic.InfiniteWire(1, 5)).To(BeNumerically("~", 4e-8, 1e-20))

			res, err := field.Evaluate(wire(200), poi)
			Expect(err).NotTo(HaveOccurred())
			cmp := analytic.Compare(res.Magnitude, analytic.InfiniteWire(1, 5))
			Expect(cmp.Computable).To(BeTrue())
			Expect(cmp.AbsPercentDiff()).To(BeNumerically("<", 11))
		})

		It("points along -z for current flowing up +y", func() {
			res, err := field.Evaluate(wire(200), poi)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Field.Z).To(BeNumerically("<", 0))
			Expect(math.Abs(res.Field.X)).To(BeNumerically("<", 1e-20))
		})

		It("converges on the finite-wire value as N grows", func() {
			want := analytic.FiniteWire(1, 20, 5)
			expectNonIncreasing(percentDiffs(wire, poi, want, 10, 100, 1000), 1e-9)
			pds := percentDiffs(wire, poi, want, 200, 2000)
			expectNonIncreasing(pds, 0)
			Expect(pds[1]).To(BeNumerically("<", 1e-4))
		})
	})

	Context("circular ring in the yz plane", func() {
		ring := func(r, i float64) func(n int) field.Source {
			return func(n int) field.Source {
				return field.CurrentCurve{
					Geometry: field.Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, r),
					Current:  i,
					Slices:   n,
				}
			}
		}

		It("is under 1% at its centre with N=360", func() {
			res, err := field.Evaluate(ring(0.105, 300)(360), r3.Vec{})
			Expect(err).NotTo(HaveOccurred())
			cmp := analytic.Compare(res.Magnitude, analytic.RingCenter(300, 0.105))
			Expect(cmp.AbsPercentDiff()).To(BeNumerically("<", 1))
		})

		It("does not get worse on axis as N grows", func() {
			pds := percentDiffs(ring(5, -300), r3.Vec{X: 4}, analytic.RingOnAxis(-300, 5, 4), 10, 100, 1000)
			expectNonIncreasing(pds, 1e-9)
			Expect(pds[2]).To(BeNumerically("<", 1e-6))
		})

		It("converges on the quadrature reference off axis", func() {
			poi := r3.Vec{X: 0.02, Y: 0.05}
			ref, err := analytic.Reference(ring(0.105, 300)(1), poi, 0)
			Expect(err).NotTo(HaveOccurred())

			pds := percentDiffs(ring(0.105, 300), poi, r3.Norm(ref), 10, 100, 1000)
			expectNonIncreasing(pds, 1e-6)
		})
	})

	Context("uniformly charged rod, Q = 500 nC", func() {
		const q = 500e-9

		It("matches the end-on formula within 1% at N=10", func() {
			const l = 5.0
			rod := field.Line{Direction: r3.Vec{X: 1}, From: 0, To: l}
			src := field.ChargedCurve{Geometry: rod, Density: field.UniformTotal(q, rod), Slices: 10}

			res, err := field.Evaluate(src, r3.Vec{Y: l})
			Expect(err).NotTo(HaveOccurred())
			cmp := analytic.CompareVec(res.Field, analytic.RodEnd(q, l, l))
			Expect(cmp.AbsPercentDiff()).To(BeNumerically("<", 1))
		})

		It("matches the bisector formula within 1% at N=10", func() {
			rod := field.Line{Direction: r3.Vec{X: 1}, From: -6, To: 6}
			src := field.ChargedCurve{Geometry: rod, Density: field.UniformTotal(q, rod), Slices: 10}

			res, err := field.Evaluate(src, r3.Vec{Y: 12})
			Expect(err).NotTo(HaveOccurred())
			cmp := analytic.Compare(res.Magnitude, analytic.RodBisector(q, 12, 12))
			Expect(cmp.AbsPercentDiff()).To(BeNumerically("<", 1))
		})
	})

	Context("rod with λ = αx²", func() {
		const (
			q = 500e-9
			l = 12.0
			y = 5.0
		)
		alpha := 12 * q / (l * l * l)
		rod := func(n int) field.Source {
			return field.ChargedCurve{
				Geometry: field.Line{Direction: r3.Vec{X: 1}, From: -l / 2, To: l / 2},
				Density:  field.Power(alpha, 2),
				Slices:   n,
			}
		}

		It("improves monotonically", func() {
			want := r3.Norm(analytic.PowerRodBisector(alpha, l, y))
			pds := percentDiffs(rod, r3.Vec{Y: y}, want, 10, 100, 1000)
			expectNonIncreasing(pds, 1e-9)
			Expect(pds[2]).To(BeNumerically("<", 0.01))
		})
	})

	Context("quarter arcs of radius 9 m about the y axis", func() {
		const (
			q = 500e-9
			r = 9.0
		)
		arc := field.Arc{U: r3.Vec{X: 1}, V: r3.Vec{Y: 1}, Radius: r, From: -math.Pi / 4, To: math.Pi / 4}

		It("reproduces the uniform-arc fixture coefficient", func() {
			src := field.ChargedCurve{Geometry: arc, Density: field.UniformTotal(q, arc), Slices: 200}
			res, err := field.Evaluate(src, r3.Vec{})
			Expect(err).NotTo(HaveOccurred())

			exact := analytic.ArcCenter(q, r, arc.From, arc.To)
			Expect(analytic.CompareVec(res.Field, exact).AbsPercentDiff()).To(BeNumerically("<", 1e-3))
			Expect(exact.Y).To(BeNumerically("<", 0))

			fixture := 0.9003 * field.K * q / (r * r)
			Expect(analytic.Compare(res.Magnitude, fixture).AbsPercentDiff()).To(BeNumerically("<", 0.01))
		})

		It("reproduces the sine-arc fixture coefficient", func() {
			alpha := q * (math.Sqrt2 + 2) / 2
			src := field.ChargedCurve{Geometry: arc, Density: field.Sine(alpha), Slices: 200}
			res, err := field.Evaluate(src, r3.Vec{})
			Expect(err).NotTo(HaveOccurred())

			exact := analytic.SineArcCenter(alpha, r, arc.From, arc.To)
			Expect(math.Abs(exact.Y)).To(BeNumerically("<", 1e-12*math.Abs(exact.X)))
			Expect(analytic.CompareVec(res.Field, exact).AbsPercentDiff()).To(BeNumerically("<", 1e-3))

			fixture := 0.2854 * field.K * alpha / r
			Expect(analytic.Compare(res.Magnitude, fixture).AbsPercentDiff()).To(BeNumerically("<", 0.01))
		})
	})
})

var _ = DescribeTable("closed forms agree with the quadrature reference",
	func(src field.Source, poi r3.Vec, want func() float64) {
		ref, err := analytic.Reference(src, poi, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(r3.Norm(ref)).To(BeNumerically("~", want(), 1e-9*want()))
	},
	Entry("finite wire",
		field.CurrentCurve{Geometry: field.Line{Direction: r3.Vec{Y: 1}, From: -10, To: 10}, Current: 1},
		r3.Vec{X: 5},
		func() float64 { return analytic.FiniteWire(1, 20, 5) }),
	Entry("reversed wire",
		field.CurrentCurve{Geometry: field.Line{Direction: r3.Vec{Y: 1}, From: 10, To: -10}, Current: 1},
		r3.Vec{X: 5},
		func() float64 { return analytic.FiniteWire(1, 20, 5) }),
	Entry("ring on axis",
		field.CurrentCurve{Geometry: field.Ring(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, 5), Current: -300},
		r3.Vec{X: 4},
		func() float64 { return analytic.RingOnAxis(-300, 5, 4) }),
	Entry("rod end-on",
		field.ChargedCurve{Geometry: field.Line{Direction: r3.Vec{X: 1}, From: 0, To: 5}, Density: field.Uniform(500e-9 / 5)},
		r3.Vec{Y: 5},
		func() float64 { return r3.Norm(analytic.RodEnd(500e-9, 5, 5)) }),
	Entry("λ = αx² rod",
		field.ChargedCurve{Geometry: field.Line{Direction: r3.Vec{X: 1}, From: -6, To: 6}, Density: field.Power(2, 2)},
		r3.Vec{Y: 5},
		func() float64 { return r3.Norm(analytic.PowerRodBisector(2, 12, 5)) }),
	Entry("half ring",
		field.ChargedCurve{Geometry: field.Arc{U: r3.Vec{X: 1}, V: r3.Vec{Y: 1}, Radius: 2, From: 0, To: math.Pi}, Density: field.Uniform(1e-9)},
		r3.Vec{},
		func() float64 { return r3.Norm(analytic.ArcCenter(2*math.Pi*1e-9, 2, 0, math.Pi)) }),
)
