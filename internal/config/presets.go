package config

import (
	"math"
	"sort"

	"github.com/san-kum/fieldlab/internal/field"
)

const (
	elementary = 1.602e-19
	nano       = 1e-9
)

var (
	xHat = Vec{1, 0, 0}
	yHat = Vec{0, 1, 0}
	zHat = Vec{0, 0, 1}
)

// Presets builds a fresh scenario per call so callers may modify the result.
var Presets = map[string]func() *Scenario{
	"uniform_rod": func() *Scenario {
		return &Scenario{
			Name:        "uniform_rod",
			Description: "500 nC spread evenly over a 5 m rod on [0, L]; field above the far end",
			Source: SourceConfig{
				Kind:     ChargedCurveKind,
				Geometry: GeometryConfig{Kind: "line", Direction: xHat, From: 0, To: 5},
				Density:  DensityConfig{Kind: "uniform_total", Total: 500 * nano},
				Slices:   10,
			},
			POIs:       []Vec{{0, 5, 0}},
			TestCharge: 500 * nano,
			Reference:  ReferenceConfig{Kind: "rod_end"},
		}
	},
	"nonuniform_rod": func() *Scenario {
		const q, l = 500 * nano, 12.0
		return &Scenario{
			Name:        "nonuniform_rod",
			Description: "rod centred on the origin with λ = αx², α = 12Q/L³",
			Source: SourceConfig{
				Kind:     ChargedCurveKind,
				Geometry: GeometryConfig{Kind: "line", Direction: xHat, From: -l / 2, To: l / 2},
				Density:  DensityConfig{Kind: "power", Alpha: 12 * q / (l * l * l), Exponent: 2},
				Slices:   10,
			},
			POIs:       []Vec{{0, 5, 0}},
			TestCharge: q,
			Reference:  ReferenceConfig{Kind: "power_rod_bisector"},
		}
	},
	"uniform_arc": func() *Scenario {
		return &Scenario{
			Name:        "uniform_arc",
			Description: "500 nC on a 9 m quarter arc centred on +y; field at the centre",
			Source: SourceConfig{
				Kind:     ChargedCurveKind,
				Geometry: GeometryConfig{Kind: "arc", U: xHat, V: yHat, Radius: 9, From: -math.Pi / 4, To: math.Pi / 4},
				Density:  DensityConfig{Kind: "uniform_total", Total: 500 * nano},
				Slices:   200,
			},
			POIs:       []Vec{{}},
			TestCharge: 500 * nano,
			Reference:  ReferenceConfig{Kind: "arc_center"},
		}
	},
	"nonuniform_arc": func() *Scenario {
		return &Scenario{
			Name:        "nonuniform_arc",
			Description: "quarter arc with λ = α sin θ, α = Q(√2+2)/2",
			Source: SourceConfig{
				Kind:     ChargedCurveKind,
				Geometry: GeometryConfig{Kind: "arc", U: xHat, V: yHat, Radius: 9, From: -math.Pi / 4, To: math.Pi / 4},
				Density:  DensityConfig{Kind: "sine", Alpha: 500 * nano * (math.Sqrt2 + 2) / 2},
				Slices:   200,
			},
			POIs:       []Vec{{}},
			TestCharge: 500 * nano,
			Reference:  ReferenceConfig{Kind: "sine_arc_center"},
		}
	},
	"straight_wire": straightWire,
	"finite_wire": func() *Scenario {
		sc := straightWire()
		sc.Name = "finite_wire"
		sc.Description = "the straight wire compared with the finite-wire closed form on its bisector"
		sc.Reference = ReferenceConfig{Kind: "finite_wire"}
		return sc
	},
	"ring": func() *Scenario {
		return &Scenario{
			Name:        "ring",
			Description: "0.105 m ring in the yz plane carrying 300 A; field at the centre",
			Source: SourceConfig{
				Kind:     CurrentCurveKind,
				Geometry: GeometryConfig{Kind: "ring", U: yHat, V: zHat, Radius: 0.105},
				Current:  300,
				Slices:   360,
			},
			POIs:      []Vec{{}},
			Reference: ReferenceConfig{Kind: "ring_center"},
		}
	},
	"ring_axis": func() *Scenario {
		return &Scenario{
			Name:        "ring_axis",
			Description: "5 m ring carrying -300 A; field on the axis 4 m from the centre",
			Source: SourceConfig{
				Kind:     CurrentCurveKind,
				Geometry: GeometryConfig{Kind: "ring", U: yHat, V: zHat, Radius: 5},
				Current:  -300,
				Slices:   36,
			},
			POIs:      []Vec{{4, 0, 0}},
			Line:      &LineConfig{Start: Vec{-10, 0, 0}, End: Vec{10, 0, 0}, Count: 41},
			Reference: ReferenceConfig{Kind: "ring_on_axis"},
		}
	},
	"ring_grid": func() *Scenario {
		axis := field.Axis{From: -0.15, To: 0.25, Count: 9}
		return &Scenario{
			Name:        "ring_grid",
			Description: "0.105 m ring sampled on a 9x9x9 grid, compared with the quadrature reference",
			Source: SourceConfig{
				Kind:     CurrentCurveKind,
				Geometry: GeometryConfig{Kind: "ring", U: yHat, V: zHat, Radius: 0.105},
				Current:  300,
				Slices:   360,
			},
			Grid:      &field.Grid{X: axis, Y: axis, Z: axis},
			Reference: ReferenceConfig{Kind: "quadrature"},
		}
	},
	"magnetic_bottle": func() *Scenario {
		coil := func(x, current float64) SourceConfig {
			return SourceConfig{
				Kind:     CurrentCurveKind,
				Geometry: GeometryConfig{Kind: "ring", Center: Vec{x, 0, 0}, U: yHat, V: zHat, Radius: 0.21},
				Current:  current,
				Slices:   360,
			}
		}
		return &Scenario{
			Name:        "magnetic_bottle",
			Description: "two 0.21 m coils at x = ±1 m carrying opposed 300 A currents",
			Source: SourceConfig{
				Kind:  CompositeKind,
				Parts: []SourceConfig{coil(-1, -300), coil(1, 300)},
			},
			Grid: &field.Grid{
				X: field.Axis{From: -1.25, To: 2.5, Count: 16},
				Y: field.Axis{From: -0.75, To: 1.5, Count: 10},
				Z: field.Axis{From: -1.25, To: 2.5, Count: 16},
			},
			Saturation: 1,
			Reference:  ReferenceConfig{Kind: "quadrature"},
		}
	},
	"dipole": func() *Scenario {
		axis := field.Axis{From: -8, To: 8, Count: 65}
		return &Scenario{
			Name:        "dipole",
			Description: "-10 nC at (3,3) and +10 nC at (-3,-3); field and potential map over the xy plane",
			Source: SourceConfig{
				Kind: PointChargesKind,
				Charges: []ChargeConfig{
					{Pos: Vec{3, 3, 0}, Q: -10 * nano},
					{Pos: Vec{-3, -3, 0}, Q: 10 * nano},
				},
			},
			POIs:       []Vec{{0, 0, 0}},
			Grid:       &field.Grid{X: axis, Y: axis, Z: field.Fixed(0)},
			Saturation: 1,
			Reference:  ReferenceConfig{Kind: "quadrature"},
		}
	},
	"coulombs_law": func() *Scenario {
		const d = 1 * nano
		return &Scenario{
			Name:        "coulombs_law",
			Description: "-e at D and 2e at -D; walk -e along x until the net force vanishes",
			Source: SourceConfig{
				Kind: PointChargesKind,
				Charges: []ChargeConfig{
					{Pos: Vec{d, 0, 0}, Q: -elementary},
					{Pos: Vec{-d, 0, 0}, Q: 2 * elementary},
				},
			},
			POIs:       []Vec{{-4 * d, 0, 0}},
			TestCharge: -elementary,
			Scan: &ScanConfig{
				Charge:    -elementary,
				Start:     Vec{-4 * d, 0, 0},
				End:       Vec{6 * d, 0, 0},
				Count:     2001,
				Tolerance: 1e-13,
			},
		}
	},
	"pain": func() *Scenario {
		const d = 3e-4
		return &Scenario{
			Name:        "pain",
			Description: "-e released from rest between two fixed +e charges",
			Source: SourceConfig{
				Kind: PointChargesKind,
				Charges: []ChargeConfig{
					{Pos: Vec{0, d, 0}, Q: elementary},
					{Pos: Vec{0, -d, 0}, Q: elementary},
				},
			},
			POIs:       []Vec{{5e-4, 0, 0}},
			TestCharge: -elementary,
			Motion: &MotionConfig{
				Charge:   -elementary,
				Mass:     3e-16,
				Position: Vec{5e-4, 0, 0},
				Dt:       0.01,
				Steps:    4000,
				Stepper:  "euler",
			},
		}
	},
	"triangle": func() *Scenario {
		const a = 5e-4
		return &Scenario{
			Name:        "triangle",
			Description: "+q moving among three fixed -q charges; pairs closer than the capture radius are ignored",
			Source: SourceConfig{
				Kind: PointChargesKind,
				Charges: []ChargeConfig{
					{Pos: Vec{0, a, 0}, Q: -elementary},
					{Pos: Vec{-a, 0, 0}, Q: -elementary},
					{Pos: Vec{a, 0, 0}, Q: -elementary},
				},
			},
			POIs:       []Vec{{-8e-4, 7e-4, 0}},
			TestCharge: elementary,
			Motion: &MotionConfig{
				Charge:        elementary,
				Mass:          3e-16,
				Position:      Vec{-8e-4, 7e-4, 0},
				Dt:            0.01,
				Steps:         4000,
				Stepper:       "euler",
				CaptureRadius: 1e-4,
			},
		}
	},
}

// GetPreset returns a fresh copy of the named preset with defaults applied,
// or nil.
func GetPreset(name string) *Scenario {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	sc := build()
	sc.ApplyDefaults()
	return sc
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func straightWire() *Scenario {
	return &Scenario{
		Name:        "straight_wire",
		Description: "20 m wire along y carrying 1 A, compared with the infinite-wire field along x",
		Source: SourceConfig{
			Kind:     CurrentCurveKind,
			Geometry: GeometryConfig{Kind: "line", Direction: yHat, From: -10, To: 10},
			Current:  1,
			Slices:   200,
		},
		POIs:       []Vec{{5, 0, 0}},
		Line:       &LineConfig{Start: Vec{-10, 0, 0}, End: Vec{10, 0, 0}, Count: 201},
		Saturation: 1e-7,
		Reference:  ReferenceConfig{Kind: "infinite_wire"},
	}
}
