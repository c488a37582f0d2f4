package aeroplane

import (
	"errors"
	"math"
	"testing"
)

func TestAircraftValidate(t *testing.T) {
	if err := ReferenceAircraft().Validate(); err != nil {
		t.Fatalf("reference aircraft is invalid: %s", err)
	}
	zeroG := ReferenceAircraft()
	zeroG.Gravity = 0
	if err := zeroG.Validate(); err != nil {
		t.Fatalf("zero gravity should be allowed: %s", err)
	}
	for field, mutate := range map[string]func(*Aircraft){
		"aircraft.gravity":     func(a *Aircraft) { a.Gravity = -9.81 },
		"aircraft.air_density": func(a *Aircraft) { a.AirDensity = 0 },
		"aircraft.wing_area":   func(a *Aircraft) { a.WingArea = math.NaN() },
		"aircraft.chord":       func(a *Aircraft) { a.Chord = -1 },
		"aircraft.mass":        func(a *Aircraft) { a.Mass = 0 },
		"aircraft.iyy":         func(a *Aircraft) { a.Iyy = math.Inf(1) },
	} {
		ac := ReferenceAircraft()
		mutate(&ac)
		err := ac.Validate()
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: expected a configuration error, got %v", field, err)
		}
		var cerr *ConfigError
		if !errors.As(err, &cerr) || cerr.Field != field {
			t.Fatalf("%s: wrong field in %v", field, err)
		}
	}
}

func TestTablesValidate(t *testing.T) {
	if err := ReferenceTables().Validate(); err != nil {
		t.Fatalf("reference tables are invalid: %s", err)
	}
	cases := []struct {
		name   string
		mutate func(*Tables)
		field  string
	}{
		{"short alpha", func(tb *Tables) {
			tb.Alpha = AlphaTable{Alpha: []float64{0}, CL: []float64{0}, CD: []float64{0}, CM: []float64{0}}
		}, "tables.alpha"},
		{"short elevator", func(tb *Tables) {
			tb.Elevator = ElevatorTable{Delta: []float64{0}, CL: []float64{0}, CM: []float64{0}}
		}, "tables.elevator"},
		{"length mismatch", func(tb *Tables) { tb.Alpha.CD = tb.Alpha.CD[:5] }, "tables.alpha.cd"},
		{"elevator mismatch", func(tb *Tables) { tb.Elevator.CM = append(tb.Elevator.CM, 0) }, "tables.elevator.cm"},
		{"NaN", func(tb *Tables) { tb.Alpha.CM[3] = math.NaN() }, "tables.alpha.cm"},
		{"Inf", func(tb *Tables) { tb.Elevator.Delta[0] = math.Inf(-1) }, "tables.elevator.delta"},
		{"several mismatches", func(tb *Tables) {
			tb.Alpha.CM = tb.Alpha.CM[:2]
			tb.Alpha.CD = tb.Alpha.CD[:4]
		}, "tables.alpha.cd"},
		{"several non-finite", func(tb *Tables) {
			tb.Elevator.CM[1] = math.NaN()
			tb.Alpha.CD[2] = math.Inf(1)
			tb.Alpha.Alpha[4] = math.NaN()
		}, "tables.alpha.alpha"},
		{"constant lift", func(tb *Tables) {
			for i := range tb.Alpha.CL {
				tb.Alpha.CL[i] = 0.5
			}
		}, "tables.alpha.cl"},
	}
	for _, c := range cases {
		tables := ReferenceTables()
		c.mutate(&tables)
		// The first defect in column order is reported, run after run.
		for run := 0; run < 20; run++ {
			err := tables.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("%s: expected a *ConfigError, got %v", c.name, err)
			}
			if cerr.Field != c.field {
				t.Fatalf("%s: field %q instead of %q on run %d", c.name, cerr.Field, c.field, run)
			}
		}
	}
}

func TestReferenceTablesAreRadians(t *testing.T) {
	tables := ReferenceTables()
	if a := tables.Alpha.Alpha[0]; a > -0.27 || a < -0.28 {
		t.Fatalf("first angle of attack is %f rad", a)
	}
	if d := tables.Elevator.Delta[4]; d < 0.34 || d > 0.35 {
		t.Fatalf("last deflection is %f rad", d)
	}
	// Each call returns fresh slices.
	tables.Alpha.CL[0] = 42
	if ReferenceTables().Alpha.CL[0] == 42 {
		t.Fatal("reference tables share their storage")
	}
}
