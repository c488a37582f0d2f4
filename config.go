package aeroplane

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ControlConfig describes the elevator schedule of a scenario.
type ControlConfig struct {
	Law        string  // "step" (default) or "hold"
	At         float64 // time of the step, s
	Deflection float64 // commanded step deflection, rad
}

// Build returns the elevator schedule around the trim deflection.
func (c ControlConfig) Build(trimδ float64) (ElevatorControl, error) {
	switch strings.ToLower(strings.TrimSpace(c.Law)) {
	case "", "step":
		if !isFinite(c.At) || !isFinite(c.Deflection) {
			return nil, configErrorf("control", "step time and deflection must be finite (got %g, %g)", c.At, c.Deflection)
		}
		return StepInput{Trim: trimδ, Commanded: c.Deflection, At: c.At}, nil
	case "hold":
		return HoldTrim{Trim: trimδ}, nil
	}
	return nil, configErrorf("control.law", "unknown control law %q", c.Law)
}

// Scenario is everything needed to fit, trim and fly the aircraft once.
type Scenario struct {
	Aircraft     Aircraft
	Tables       Tables
	Airspeed     float64 // trim airspeed, m/s
	Gamma        float64 // trim flight path angle, rad
	InitialGuess float64 // initial angle of attack of the trim search, rad
	Start, End   float64 // s
	Step         float64 // s
	Scheme       Scheme
	Control      ControlConfig
}

// ReferenceScenario returns the wind tunnel campaign's run: level flight at 100 m/s for ten
// seconds with an elevator step at one second.
func ReferenceScenario() Scenario {
	return Scenario{
		Aircraft:     ReferenceAircraft(),
		Tables:       ReferenceTables(),
		Airspeed:     100,
		Gamma:        0,
		InitialGuess: DefaultTrimGuess,
		Start:        0,
		End:          10,
		Step:         0.1,
		Scheme:       Reference,
		Control:      ControlConfig{Law: "step", At: StepTime, Deflection: StepDeflection},
	}
}

func (s Scenario) String() string {
	return fmt.Sprintf("V=%.2f m/s γ=%.4f rad t=[%g, %g] Δt=%g %s control=%s", s.Airspeed, s.Gamma, s.Start, s.End, s.Step, s.Scheme, s.Control.Law)
}

// alphaSweep and elevatorSweep are the file layout of the tables, before any unit conversion.
type alphaSweep struct {
	Degrees bool      `mapstructure:"degrees"`
	Alpha   []float64 `mapstructure:"alpha"`
	CL      []float64 `mapstructure:"cl"`
	CD      []float64 `mapstructure:"cd"`
	CM      []float64 `mapstructure:"cm"`
}

type elevatorSweep struct {
	Degrees bool      `mapstructure:"degrees"`
	Delta   []float64 `mapstructure:"delta"`
	CL      []float64 `mapstructure:"cl"`
	CM      []float64 `mapstructure:"cm"`
}

// requiredKeys have no default: the run is not defined without them.
var requiredKeys = []string{"trim.airspeed", "trim.gamma", "simulation.start", "simulation.end", "simulation.step"}

// LoadScenario reads a scenario file (TOML, YAML or JSON, from its extension).
// The aircraft constants and the tables default to the reference configuration, and any key
// may be overridden with an AEROPLANE_ prefixed environment variable (e.g. AEROPLANE_TRIM_AIRSPEED).
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("aeroplane")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, configErrorf("scenario", "%s: %s", filepath.Base(path), err)
	}
	return scenarioFrom(v)
}

func setDefaults(v *viper.Viper) {
	ac := ReferenceAircraft()
	v.SetDefault("aircraft.gravity", ac.Gravity)
	v.SetDefault("aircraft.air_density", ac.AirDensity)
	v.SetDefault("aircraft.wing_area", ac.WingArea)
	v.SetDefault("aircraft.chord", ac.Chord)
	v.SetDefault("aircraft.mass", ac.Mass)
	v.SetDefault("aircraft.iyy", ac.Iyy)
	v.SetDefault("trim.initial_guess", DefaultTrimGuess)
	v.SetDefault("simulation.scheme", Reference.String())
	v.SetDefault("control.law", step.String())
	v.SetDefault("control.at", StepTime)
	v.SetDefault("control.deflection", StepDeflection)
}

func scenarioFrom(v *viper.Viper) (Scenario, error) {
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return Scenario{}, configErrorf(key, "is required")
		}
	}
	scheme, err := ParseScheme(v.GetString("simulation.scheme"))
	if err != nil {
		return Scenario{}, err
	}
	tables, err := tablesFrom(v)
	if err != nil {
		return Scenario{}, err
	}
	if err := tables.Validate(); err != nil {
		return Scenario{}, err
	}
	ac := Aircraft{
		Gravity:    v.GetFloat64("aircraft.gravity"),
		AirDensity: v.GetFloat64("aircraft.air_density"),
		WingArea:   v.GetFloat64("aircraft.wing_area"),
		Chord:      v.GetFloat64("aircraft.chord"),
		Mass:       v.GetFloat64("aircraft.mass"),
		Iyy:        v.GetFloat64("aircraft.iyy"),
	}
	if err := ac.Validate(); err != nil {
		return Scenario{}, err
	}
	return Scenario{
		Aircraft:     ac,
		Tables:       tables,
		Airspeed:     v.GetFloat64("trim.airspeed"),
		Gamma:        v.GetFloat64("trim.gamma"),
		InitialGuess: v.GetFloat64("trim.initial_guess"),
		Start:        v.GetFloat64("simulation.start"),
		End:          v.GetFloat64("simulation.end"),
		Step:         v.GetFloat64("simulation.step"),
		Scheme:       scheme,
		Control: ControlConfig{
			Law:        v.GetString("control.law"),
			At:         v.GetFloat64("control.at"),
			Deflection: v.GetFloat64("control.deflection"),
		},
	}, nil
}

// tablesFrom reads each sweep, falling back to the reference sweep when it is absent.
func tablesFrom(v *viper.Viper) (Tables, error) {
	tables := ReferenceTables()
	if v.IsSet("tables.alpha") {
		var raw alphaSweep
		if err := v.UnmarshalKey("tables.alpha", &raw); err != nil {
			return Tables{}, configErrorf("tables.alpha", "%s", err)
		}
		tables.Alpha = AlphaTable{Alpha: raw.Alpha, CL: raw.CL, CD: raw.CD, CM: raw.CM}
		if raw.Degrees {
			tables.Alpha.Alpha = Deg2RadAll(raw.Alpha)
		}
	}
	if v.IsSet("tables.elevator") {
		var raw elevatorSweep
		if err := v.UnmarshalKey("tables.elevator", &raw); err != nil {
			return Tables{}, configErrorf("tables.elevator", "%s", err)
		}
		tables.Elevator = ElevatorTable{Delta: raw.Delta, CL: raw.CL, CM: raw.CM}
		if raw.Degrees {
			tables.Elevator.Delta = Deg2RadAll(raw.Delta)
		}
	}
	return tables, nil
}
