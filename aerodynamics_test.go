package aeroplane

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func referenceAero(t *testing.T) Aerodynamics {
	aero, err := NewAerodynamics(ReferenceAircraft(), referenceCoefficients(t))
	if err != nil {
		t.Fatalf("reference aerodynamics: %s", err)
	}
	return aero
}

func TestNewAerodynamics(t *testing.T) {
	c := referenceCoefficients(t)
	bad := ReferenceAircraft()
	bad.Mass = -1
	if _, err := NewAerodynamics(bad, c); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("negative mass: %v", err)
	}
	c.CMδ = 0
	if _, err := NewAerodynamics(ReferenceAircraft(), c); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("zero elevator effectiveness: %v", err)
	}
	c.CMδ = math.NaN()
	if _, err := NewAerodynamics(ReferenceAircraft(), c); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("NaN elevator effectiveness: %v", err)
	}
}

func TestForces(t *testing.T) {
	aero := referenceAero(t)
	qS := aero.DynamicPressureArea(100)
	if !scalar.EqualWithinAbs(qS, 100650, 1e-9) {
		t.Fatalf("½ρV²S = %f", qS)
	}
	α, δ := 0.02, -0.05
	if L := aero.Lift(α, δ, 100); !scalar.EqualWithinAbs(L, qS*aero.Coefficients.CL(α, δ), 1e-9) {
		t.Fatalf("lift = %f", L)
	}
	if D := aero.Drag(α, δ, 100); D <= 0 || !scalar.EqualWithinAbs(D, qS*aero.Coefficients.CD(α, δ), 1e-9) {
		t.Fatalf("drag = %f", D)
	}
	if M := aero.Moment(α, δ, 100); !scalar.EqualWithinAbs(M, qS*1.75*aero.Coefficients.CM(α, δ), 1e-9) {
		t.Fatalf("moment = %f", M)
	}
	// Forces scale with V².
	if !scalar.EqualWithinAbs(aero.Lift(α, δ, 50)*4, aero.Lift(α, δ, 100), 1e-9) {
		t.Fatal("lift does not scale with V²")
	}
	// Climbing requires more thrust.
	if aero.RequiredThrust(α, δ, α+0.1, 100) <= aero.RequiredThrust(α, δ, α, 100) {
		t.Fatal("climb thrust should exceed level thrust")
	}
}

func TestEquilibriumMonotonic(t *testing.T) {
	aero := referenceAero(t)
	// More incidence means more lift, hence a smaller residual around the trim.
	prev := aero.Equilibrium(-0.05, 100, 0)
	for α := -0.04; α <= 0.1; α += 0.01 {
		cur := aero.Equilibrium(α, 100, 0)
		if cur >= prev {
			t.Fatalf("residual not decreasing at α=%f", α)
		}
		prev = cur
	}
}
