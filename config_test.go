package aeroplane

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return fn
}

const minimalScenario = `
[trim]
airspeed = 100.0
gamma = 0.0

[simulation]
start = 0.0
end = 10.0
step = 0.1
`

func TestLoadReferenceScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("cmd", "pitchsim", "reference.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sc, ReferenceScenario()) {
		t.Fatalf("scenario file differs from the reference:\n%+v\n%+v", sc, ReferenceScenario())
	}
}

func TestLoadScenarioDefaults(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "minimal.toml", minimalScenario))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sc, ReferenceScenario()) {
		t.Fatalf("defaults differ from the reference:\n%+v", sc)
	}
}

func TestLoadScenarioOverrides(t *testing.T) {
	yaml := `
aircraft:
  mass: 1500
trim:
  airspeed: 80
  gamma: 0.02
  initial_guess: 0.05
simulation:
  start: 0
  end: 5
  step: 0.01
  scheme: coupled-rk4
control:
  law: hold
tables:
  elevator:
    delta: [-0.2, 0.0, 0.2]
    cl: [-0.03, 0.0, 0.03]
    cm: [0.05, 0.0, -0.05]
`
	sc, err := LoadScenario(writeScenario(t, "climb.yaml", yaml))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Aircraft.Mass != 1500 || sc.Aircraft.Iyy != 7000 {
		t.Fatalf("aircraft %s", sc.Aircraft)
	}
	if sc.Airspeed != 80 || sc.Gamma != 0.02 || sc.InitialGuess != 0.05 {
		t.Fatalf("trim inputs %s", sc)
	}
	if sc.Scheme != CoupledRK4 || sc.End != 5 || sc.Step != 0.01 || sc.Control.Law != "hold" {
		t.Fatalf("simulation inputs %s", sc)
	}
	// Radians when the degrees flag is unset, and the alpha sweep falls back to the reference.
	if !reflect.DeepEqual(sc.Tables.Elevator.Delta, []float64{-0.2, 0, 0.2}) {
		t.Fatalf("elevator sweep %v", sc.Tables.Elevator.Delta)
	}
	if !reflect.DeepEqual(sc.Tables.Alpha, ReferenceTables().Alpha) {
		t.Fatal("alpha sweep should default to the reference")
	}
}

func TestLoadScenarioEnv(t *testing.T) {
	t.Setenv("AEROPLANE_TRIM_AIRSPEED", "75")
	sc, err := LoadScenario(writeScenario(t, "minimal.toml", minimalScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Airspeed != 75 {
		t.Fatalf("environment override ignored: V=%f", sc.Airspeed)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("missing file: %v", err)
	}
	for name, content := range map[string]string{
		"no airspeed": "[trim]\ngamma = 0.0\n[simulation]\nstart = 0.0\nend = 1.0\nstep = 0.1\n",
		"no step":     "[trim]\nairspeed = 100.0\ngamma = 0.0\n[simulation]\nstart = 0.0\nend = 1.0\n",
		"bad scheme":  minimalScenario + "scheme = \"leapfrog\"\n",
		"bad table":   minimalScenario + "[tables.alpha]\nalpha = \"steep\"\n",
	} {
		_, err := LoadScenario(writeScenario(t, "bad.toml", content))
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("%s: expected a *ConfigError, got %v", name, err)
		}
	}
}
