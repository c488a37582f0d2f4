package aeroplane

import "fmt"

// ControlLaw defines an enum of elevator schedules.
type ControlLaw uint8

const (
	holdTrim ControlLaw = iota + 1
	step
)

const (
	// StepTime is the simulation time at which the reference elevator step is applied.
	StepTime = 1.0
	// StepDeflection is the elevator deflection commanded by the reference step, in radians.
	StepDeflection = -0.0572
)

func (cl ControlLaw) String() string {
	switch cl {
	case holdTrim:
		return "hold"
	case step:
		return "step"
	}
	panic("cannot stringify unknown control law")
}

// ElevatorControl is a scripted, open-loop elevator schedule indexed on simulation time.
type ElevatorControl interface {
	Deflection(t float64) float64 // rad
	Type() ControlLaw
	Reason() string
}

// HoldTrim keeps the elevator at the trim deflection for the whole run.
type HoldTrim struct {
	Trim float64
}

// Deflection implements the ElevatorControl interface.
func (cl HoldTrim) Deflection(t float64) float64 {
	return cl.Trim
}

// Type implements the ElevatorControl interface.
func (cl HoldTrim) Type() ControlLaw {
	return holdTrim
}

// Reason implements the ElevatorControl interface.
func (cl HoldTrim) Reason() string {
	return fmt.Sprintf("hold δ=%.4f rad", cl.Trim)
}

// StepInput holds the trim deflection until At, then holds Commanded.
type StepInput struct {
	Trim, Commanded float64 // rad
	At              float64 // simulation time
}

// Deflection implements the ElevatorControl interface.
func (cl StepInput) Deflection(t float64) float64 {
	if t >= cl.At {
		return cl.Commanded
	}
	return cl.Trim
}

// Type implements the ElevatorControl interface.
func (cl StepInput) Type() ControlLaw {
	return step
}

// Reason implements the ElevatorControl interface.
func (cl StepInput) Reason() string {
	return fmt.Sprintf("step δ=%.4f -> %.4f rad at t=%g", cl.Trim, cl.Commanded, cl.At)
}

// NewElevatorStep returns the reference pilot input: trim until t=1, then -0.0572 rad.
func NewElevatorStep(trimδ float64) StepInput {
	return StepInput{Trim: trimδ, Commanded: StepDeflection, At: StepTime}
}
