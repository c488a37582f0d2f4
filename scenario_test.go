package aeroplane

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-kit/log"
)

func TestRunScenario(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)
	res, err := RunScenario(context.Background(), ReferenceScenario(), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.History) != 101 || res.Trim.Alpha <= 0 || res.Trim.Alpha > 0.1 || res.Trim.Thrust <= 0 {
		t.Fatalf("unexpected result %s", res)
	}
	if res.History[0].Delta != res.Trim.Delta {
		t.Fatal("the run does not start at the trim deflection")
	}
	for _, subsys := range []string{"subsys=aero", "subsys=trim", "subsys=sim"} {
		if !strings.Contains(buf.String(), subsys) {
			t.Fatalf("nothing logged by %s", subsys)
		}
	}
}

func TestRunScenarioErrors(t *testing.T) {
	for name, mutate := range map[string]func(*Scenario){
		"bad table":    func(sc *Scenario) { sc.Tables.Alpha.CL = nil },
		"bad aircraft": func(sc *Scenario) { sc.Aircraft.Iyy = 0 },
		"bad airspeed": func(sc *Scenario) { sc.Airspeed = 0 },
		"bad control":  func(sc *Scenario) { sc.Control.Law = "doublet" },
		"bad step":     func(sc *Scenario) { sc.Step = 0 },
	} {
		sc := ReferenceScenario()
		mutate(&sc)
		res, err := RunScenario(context.Background(), sc)
		if !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: expected a configuration error, got %v", name, err)
		}
		if len(res.History) != 0 {
			t.Fatalf("%s: simulation started anyway", name)
		}
	}
	sc := ReferenceScenario()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunScenario(ctx, sc)
	if !errors.Is(err, context.Canceled) || len(res.History) != 1 {
		t.Fatalf("cancelled run: %d samples, %v", len(res.History), err)
	}
}
