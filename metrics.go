package aeroplane

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives the outcome of each stage of a run.
type Recorder interface {
	ObserveFit(r FitReport)
	ObserveTrim(t Trim, err error)
	ObserveStep(s State)
	ObserveRun(samples int, err error, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFit(FitReport)                 {}
func (nopRecorder) ObserveTrim(Trim, error)              {}
func (nopRecorder) ObserveStep(State)                    {}
func (nopRecorder) ObserveRun(int, error, time.Duration) {}

// Metrics is a Recorder backed by Prometheus collectors.
type Metrics struct {
	FitRSquared    *prometheus.GaugeVec
	TrimIterations prometheus.Histogram
	TrimAlpha      prometheus.Gauge
	TrimThrust     prometheus.Gauge
	Steps          prometheus.Counter
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	Altitude       prometheus.Gauge
	PitchRate      prometheus.Gauge
}

// NewMetrics registers the simulation metrics against reg, defaulting to the global registry
// when nil. Collectors already registered under the same name are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		FitRSquared: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aeroplane_fit_r_squared",
			Help: "Coefficient of determination of each aerodynamic curve fit.",
		}, []string{"curve"}),
		TrimIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aeroplane_trim_iterations",
			Help:    "Secant iterations needed to find the trim.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
		}),
		TrimAlpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aeroplane_trim_alpha_radians",
			Help: "Angle of attack of the latest trim.",
		}),
		TrimThrust: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aeroplane_trim_thrust_newtons",
			Help: "Required thrust of the latest trim.",
		}),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aeroplane_samples_total",
			Help: "Total number of committed flight state samples.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aeroplane_runs_total",
			Help: "Total number of simulation runs, labeled by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aeroplane_run_duration_seconds",
			Help:    "Wall clock duration of a simulation run.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 10, 7),
		}),
		Altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aeroplane_altitude_change_meters",
			Help: "Altitude gained since the start of the run, latest sample.",
		}),
		PitchRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aeroplane_pitch_rate_radians_per_second",
			Help: "Pitch rate, latest sample.",
		}),
	}
	var err error
	if m.FitRSquared, err = register(reg, m.FitRSquared, "aeroplane_fit_r_squared"); err != nil {
		return nil, err
	}
	if m.TrimIterations, err = register(reg, m.TrimIterations, "aeroplane_trim_iterations"); err != nil {
		return nil, err
	}
	if m.TrimAlpha, err = register(reg, m.TrimAlpha, "aeroplane_trim_alpha_radians"); err != nil {
		return nil, err
	}
	if m.TrimThrust, err = register(reg, m.TrimThrust, "aeroplane_trim_thrust_newtons"); err != nil {
		return nil, err
	}
	if m.Steps, err = register(reg, m.Steps, "aeroplane_samples_total"); err != nil {
		return nil, err
	}
	if m.Runs, err = register(reg, m.Runs, "aeroplane_runs_total"); err != nil {
		return nil, err
	}
	if m.RunDuration, err = register(reg, m.RunDuration, "aeroplane_run_duration_seconds"); err != nil {
		return nil, err
	}
	if m.Altitude, err = register(reg, m.Altitude, "aeroplane_altitude_change_meters"); err != nil {
		return nil, err
	}
	if m.PitchRate, err = register(reg, m.PitchRate, "aeroplane_pitch_rate_radians_per_second"); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveFit implements the Recorder interface.
func (m *Metrics) ObserveFit(r FitReport) {
	if m == nil {
		return
	}
	m.FitRSquared.WithLabelValues("lift_alpha").Set(r.LiftAlpha)
	m.FitRSquared.WithLabelValues("lift_elevator").Set(r.LiftElevator)
	m.FitRSquared.WithLabelValues("moment_alpha").Set(r.MomentAlpha)
	m.FitRSquared.WithLabelValues("moment_elevator").Set(r.MomentElevator)
	m.FitRSquared.WithLabelValues("drag_polar").Set(r.DragPolar)
}

// ObserveTrim implements the Recorder interface. Failed trims are only counted as runs.
func (m *Metrics) ObserveTrim(t Trim, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Runs.WithLabelValues(outcome(err)).Inc()
		return
	}
	m.TrimIterations.Observe(float64(t.Iterations))
	m.TrimAlpha.Set(t.Alpha)
	m.TrimThrust.Set(t.Thrust)
}

// ObserveStep implements the Recorder interface.
func (m *Metrics) ObserveStep(s State) {
	if m == nil {
		return
	}
	m.Steps.Inc()
	m.Altitude.Set(s.Ze)
	m.PitchRate.Set(s.Q)
}

// ObserveRun implements the Recorder interface.
func (m *Metrics) ObserveRun(samples int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome(err)).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrTrimNotFound):
		return "trim_not_found"
	case errors.Is(err, ErrDivergedSimulation):
		return "diverged"
	default:
		return "aborted"
	}
}

// register registers c, or returns the collector already registered under the same name if it
// has the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}
