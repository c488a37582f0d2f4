package aeroplane

import (
	"fmt"
)

// Aircraft holds the physical constants of the airframe and of the atmosphere it flies in.
// It is a value: build it once and pass it to whatever needs it.
type Aircraft struct {
	Gravity    float64 // m/s^2
	AirDensity float64 // kg/m^3
	WingArea   float64 // m^2
	Chord      float64 // mean aerodynamic chord, m
	Mass       float64 // kg
	Iyy        float64 // pitch moment of inertia, kg.m^2
}

// ReferenceAircraft returns the light aircraft used throughout the wind tunnel campaign.
func ReferenceAircraft() Aircraft {
	return Aircraft{
		Gravity:    9.81,
		AirDensity: 1.0065,
		WingArea:   20.0,
		Chord:      1.75,
		Mass:       1300.0,
		Iyy:        7000,
	}
}

// Validate returns a configuration error for non-physical constants.
func (a Aircraft) Validate() error {
	if !isFinite(a.Gravity) || a.Gravity < 0 {
		return configErrorf("aircraft.gravity", "must be finite and non-negative (got %g)", a.Gravity)
	}
	for _, c := range []struct {
		name string
		val  float64
	}{
		{"aircraft.air_density", a.AirDensity},
		{"aircraft.wing_area", a.WingArea},
		{"aircraft.chord", a.Chord},
		{"aircraft.mass", a.Mass},
		{"aircraft.iyy", a.Iyy},
	} {
		if !isFinite(c.val) || c.val <= 0 {
			return configErrorf(c.name, "must be strictly positive (got %g)", c.val)
		}
	}
	return nil
}

func (a Aircraft) String() string {
	return fmt.Sprintf("m=%.1f kg Iyy=%.1f kg.m^2 S=%.2f m^2 cbar=%.2f m ρ=%.4f kg/m^3 g=%.2f m/s^2", a.Mass, a.Iyy, a.WingArea, a.Chord, a.AirDensity, a.Gravity)
}

// AlphaTable is the angle of attack sweep: each index is one wind tunnel point.
type AlphaTable struct {
	Alpha []float64 // rad
	CL    []float64
	CD    []float64
	CM    []float64
}

// ElevatorTable is the elevator sweep of incremental coefficients.
type ElevatorTable struct {
	Delta []float64 // rad
	CL    []float64
	CM    []float64
}

// Tables groups both sweeps.
type Tables struct {
	Alpha    AlphaTable
	Elevator ElevatorTable
}

// ReferenceTables returns the wind tunnel data of the reference aircraft, angles in radians.
func ReferenceTables() Tables {
	return Tables{
		Alpha: AlphaTable{
			Alpha: Deg2RadAll([]float64{-16, -12, -8, -4, -2, 0, 2, 4, 8, 12}),
			CL:    []float64{-1.421, -1.092, -0.695, -0.312, -0.132, 0.041, 0.218, 0.402, 0.786, 1.186},
			CD:    []float64{0.115, 0.079, 0.047, 0.031, 0.027, 0.027, 0.029, 0.034, 0.054, 0.089},
			CM:    []float64{0.0775, 0.0663, 0.053, 0.0337, 0.0217, 0.0073, -0.009, -0.0263, -0.0632, -0.1235},
		},
		Elevator: ElevatorTable{
			Delta: Deg2RadAll([]float64{-20, -10, 0, 10, 20}),
			CL:    []float64{-0.051, -0.038, 0.0, 0.038, 0.052},
			CM:    []float64{0.0842, 0.0601, -0.0001, -0.0601, -0.0843},
		},
	}
}

// column is a named table column, checked in declaration order.
type column struct {
	name   string
	values []float64
}

// Validate checks the shape of the tables. Singular fits are only detected by Fit.
func (t Tables) Validate() error {
	n := len(t.Alpha.Alpha)
	if n < 2 {
		return configErrorf("tables.alpha", "needs at least 2 points for a linear fit (got %d)", n)
	}
	alpha := []column{{"tables.alpha.cl", t.Alpha.CL}, {"tables.alpha.cd", t.Alpha.CD}, {"tables.alpha.cm", t.Alpha.CM}}
	for _, c := range alpha {
		if len(c.values) != n {
			return configErrorf(c.name, "has %d values for %d angles of attack", len(c.values), n)
		}
	}
	m := len(t.Elevator.Delta)
	if m < 2 {
		return configErrorf("tables.elevator", "needs at least 2 points for a linear fit (got %d)", m)
	}
	elevator := []column{{"tables.elevator.cl", t.Elevator.CL}, {"tables.elevator.cm", t.Elevator.CM}}
	for _, c := range elevator {
		if len(c.values) != m {
			return configErrorf(c.name, "has %d values for %d deflections", len(c.values), m)
		}
	}
	all := append([]column{{"tables.alpha.alpha", t.Alpha.Alpha}}, alpha...)
	all = append(append(all, column{"tables.elevator.delta", t.Elevator.Delta}), elevator...)
	for _, c := range all {
		if i := allFinite(c.values); i >= 0 {
			return configErrorf(c.name, "has a non-finite value at index %d", i)
		}
	}
	if d := distinct(t.Alpha.CL); d < 3 {
		return configErrorf("tables.alpha.cl", "needs at least 3 distinct values for the drag polar (got %d)", d)
	}
	return nil
}
