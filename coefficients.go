package aeroplane

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Coefficients is the fitted aerodynamic model. Angles are in radians.
type Coefficients struct {
	CL0, CLα, CLδ float64 // lift
	CM0, CMα, CMδ float64 // pitching moment
	CD0, K        float64 // drag polar CD = CD0 + K.CL^2
	KL            float64 // linear term of the drag polar fit, expected ~0 and not used
}

// CL returns the lift coefficient.
func (c Coefficients) CL(α, δ float64) float64 {
	return c.CL0 + c.CLα*α + c.CLδ*δ
}

// CM returns the pitching moment coefficient.
func (c Coefficients) CM(α, δ float64) float64 {
	return c.CM0 + c.CMα*α + c.CMδ*δ
}

// CD returns the drag coefficient. It is not clamped: a bad polar may return negative drag.
func (c Coefficients) CD(α, δ float64) float64 {
	cl := c.CL(α, δ)
	return c.CD0 + c.K*cl*cl
}

// TrimElevator returns the deflection which zeroes the pitching moment at α.
func (c Coefficients) TrimElevator(α float64) float64 {
	return -(c.CM0 + c.CMα*α) / c.CMδ
}

func (c Coefficients) String() string {
	return fmt.Sprintf("CL0=%.6f CLα=%.6f CLδ=%.6f CM0=%.6f CMα=%.6f CMδ=%.6f CD0=%.6f K=%.6f", c.CL0, c.CLα, c.CLδ, c.CM0, c.CMα, c.CMδ, c.CD0, c.K)
}

// FitReport stores the coefficient of determination of each fitted curve.
type FitReport struct {
	LiftAlpha, LiftElevator     float64
	MomentAlpha, MomentElevator float64
	DragPolar                   float64
}

// Fit performs the least-squares fits of the wind tunnel tables: linear for the lift and
// moment curves, quadratic for the drag polar.
func Fit(t Tables) (Coefficients, FitReport, error) {
	var c Coefficients
	var r FitReport
	if err := t.Validate(); err != nil {
		return c, r, err
	}
	curves := []struct {
		name string
		x, y []float64
		deg  int
		fill func(p []float64, r2 float64)
	}{
		{"tables.alpha.cl", t.Alpha.Alpha, t.Alpha.CL, 1, func(p []float64, r2 float64) {
			c.CLα, c.CL0, r.LiftAlpha = p[0], p[1], r2
		}},
		{"tables.elevator.cl", t.Elevator.Delta, t.Elevator.CL, 1, func(p []float64, r2 float64) {
			c.CLδ, r.LiftElevator = p[0], r2
		}},
		{"tables.alpha.cm", t.Alpha.Alpha, t.Alpha.CM, 1, func(p []float64, r2 float64) {
			c.CMα, c.CM0, r.MomentAlpha = p[0], p[1], r2
		}},
		{"tables.elevator.cm", t.Elevator.Delta, t.Elevator.CM, 1, func(p []float64, r2 float64) {
			c.CMδ, r.MomentElevator = p[0], r2
		}},
		{"tables.alpha.cd", t.Alpha.CL, t.Alpha.CD, 2, func(p []float64, r2 float64) {
			c.K, c.KL, c.CD0, r.DragPolar = p[0], p[1], p[2], r2
		}},
	}
	for _, curve := range curves {
		p := polyfit(curve.x, curve.y, curve.deg)
		if p == nil {
			return Coefficients{}, FitReport{}, configErrorf(curve.name, "cannot be fitted with a degree %d polynomial (singular)", curve.deg)
		}
		curve.fill(p, rSquared(curve.x, curve.y, p))
	}
	return c, r, nil
}

// rSquared returns the coefficient of determination of the polynomial p over (x, y).
func rSquared(x, y, p []float64) float64 {
	estimates := make([]float64, len(x))
	for i, xi := range x {
		estimates[i] = polyval(p, xi)
	}
	return stat.RSquaredFrom(estimates, y, nil)
}
