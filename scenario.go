package aeroplane

import (
	"context"
	"fmt"
)

// Result gathers the output of every stage of a scenario run.
type Result struct {
	Coefficients Coefficients
	Fit          FitReport
	Trim         Trim
	History      History
}

func (r Result) String() string {
	return fmt.Sprintf("%s\n%s\n%d samples", r.Coefficients, r.Trim, len(r.History))
}

// RunScenario fits the tables, trims the aircraft and flies the scenario.
// The logger and recorder set through opts also observe the fit and the trim.
// On a divergence or a cancellation, the partial history is returned with the error.
func RunScenario(ctx context.Context, sc Scenario, opts ...SimOption) (Result, error) {
	o := newSimOptions(opts)
	logger, rec := o.logger, o.metrics

	var res Result
	var err error
	if res.Coefficients, res.Fit, err = Fit(sc.Tables); err != nil {
		return res, err
	}
	rec.ObserveFit(res.Fit)
	logger.Log("level", "info", "subsys", "aero", "coefficients", res.Coefficients, "r2(CD)", res.Fit.DragPolar)

	aero, err := NewAerodynamics(sc.Aircraft, res.Coefficients)
	if err != nil {
		return res, err
	}
	res.Trim, err = SolveTrim(aero, sc.Airspeed, sc.Gamma, WithInitialGuess(sc.InitialGuess), WithTrimLogger(logger))
	rec.ObserveTrim(res.Trim, err)
	if err != nil {
		return res, err
	}
	ctrl, err := sc.Control.Build(res.Trim.Delta)
	if err != nil {
		return res, err
	}
	sim, err := NewSimulation(aero, res.Trim, ctrl, SimConfig{Start: sc.Start, End: sc.End, Step: sc.Step, Scheme: sc.Scheme}, opts...)
	if err != nil {
		return res, err
	}
	res.History, err = sim.Run(ctx)
	return res, err
}
