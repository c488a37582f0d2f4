package aeroplane

import (
	"math"
)

const (
	// elevatorε is the smallest elevator pitch effectiveness for which trim is well posed.
	elevatorε = 1e-12
)

// Aerodynamics binds an airframe to its fitted coefficient model and computes forces.
// All methods are pure functions of their arguments and of the immutable model.
type Aerodynamics struct {
	Aircraft     Aircraft
	Coefficients Coefficients
}

// NewAerodynamics returns an Aerodynamics after validating the airframe and the elevator.
func NewAerodynamics(a Aircraft, c Coefficients) (Aerodynamics, error) {
	if err := a.Validate(); err != nil {
		return Aerodynamics{}, err
	}
	if !isFinite(c.CMδ) || math.Abs(c.CMδ) < elevatorε {
		return Aerodynamics{}, configErrorf("coefficients.cm_delta", "elevator has no pitch effectiveness (CMδ=%g)", c.CMδ)
	}
	return Aerodynamics{a, c}, nil
}

// DynamicPressureArea returns ½ρV²S, in Newtons per unit coefficient.
func (a Aerodynamics) DynamicPressureArea(V float64) float64 {
	return 0.5 * a.Aircraft.AirDensity * V * V * a.Aircraft.WingArea
}

// Lift returns the lift force in N.
func (a Aerodynamics) Lift(α, δ, V float64) float64 {
	return a.DynamicPressureArea(V) * a.Coefficients.CL(α, δ)
}

// Drag returns the drag force in N.
func (a Aerodynamics) Drag(α, δ, V float64) float64 {
	return a.DynamicPressureArea(V) * a.Coefficients.CD(α, δ)
}

// Moment returns the pitching moment in N.m.
func (a Aerodynamics) Moment(α, δ, V float64) float64 {
	return a.DynamicPressureArea(V) * a.Aircraft.Chord * a.Coefficients.CM(α, δ)
}

// RequiredThrust returns the thrust balancing the forces along the body x axis.
// The engine is assumed aligned with the body x axis: installed thrust angle is neglected.
func (a Aerodynamics) RequiredThrust(α, δ, θ, V float64) float64 {
	qS := a.DynamicPressureArea(V)
	return qS*a.Coefficients.CD(α, δ)*math.Cos(α) +
		a.Aircraft.Mass*a.Aircraft.Gravity*math.Sin(θ) -
		qS*a.Coefficients.CL(α, δ)*math.Sin(α)
}

// Equilibrium returns the force imbalance normal to the flight path at α, with the elevator
// set so that the pitching moment is zero. Trim is the root of this function.
func (a Aerodynamics) Equilibrium(α, V, γ float64) float64 {
	δ := a.Coefficients.TrimElevator(α)
	return -a.Lift(α, δ, V)*math.Cos(α) - a.Drag(α, δ, V)*math.Sin(α) +
		a.Aircraft.Mass*a.Aircraft.Gravity*math.Cos(α+γ)
}
