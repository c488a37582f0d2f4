package aeroplane

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-kit/log"
)

const (
	// DefaultTrimGuess is the default initial angle of attack of the trim search, in radians.
	DefaultTrimGuess = 0.01
	// DefaultTrimTolerance is the relative step size at which the trim search stops.
	DefaultTrimTolerance = 1e-10
	// DefaultTrimIterations bounds the trim search.
	DefaultTrimIterations = 50
	secantε               = 1e-4
)

// Trim is the equilibrium flight condition at a given airspeed and flight path angle.
type Trim struct {
	Airspeed   float64 // m/s
	Gamma      float64 // flight path angle, rad
	Alpha      float64 // rad
	Delta      float64 // elevator, rad
	Theta      float64 // pitch angle, rad
	Ub, Wb     float64 // body axis velocities, m/s
	Thrust     float64 // N
	Iterations int
}

func (t Trim) String() string {
	return fmt.Sprintf("V=%.2f m/s γ=%.4f rad: α=%.6f rad δ=%.6f rad θ=%.6f rad ub=%.4f m/s wb=%.4f m/s thrust=%.2f N (%d iterations)", t.Airspeed, t.Gamma, t.Alpha, t.Delta, t.Theta, t.Ub, t.Wb, t.Thrust, t.Iterations)
}

type trimConfig struct {
	guess, tol float64
	maxIter    int
	logger     log.Logger
}

// TrimOption configures SolveTrim.
type TrimOption func(*trimConfig)

// WithInitialGuess sets the starting angle of attack of the search, in radians.
func WithInitialGuess(α float64) TrimOption {
	return func(c *trimConfig) { c.guess = α }
}

// WithTolerance sets the relative convergence tolerance on the angle of attack.
func WithTolerance(tol float64) TrimOption {
	return func(c *trimConfig) { c.tol = tol }
}

// WithMaxIterations bounds the number of secant iterations.
func WithMaxIterations(n int) TrimOption {
	return func(c *trimConfig) { c.maxIter = n }
}

// WithTrimLogger logs each iteration at debug level.
func WithTrimLogger(l log.Logger) TrimOption {
	return func(c *trimConfig) { c.logger = l }
}

// SolveTrim finds the angle of attack and elevator deflection for which the forces and the
// pitching moment balance at airspeed V (m/s) and flight path angle γ (rad).
// The elevator is eliminated in closed form (zero pitching moment), leaving a scalar root-find
// over α solved with the secant method.
func SolveTrim(aero Aerodynamics, V, γ float64, opts ...TrimOption) (Trim, error) {
	conf := trimConfig{guess: DefaultTrimGuess, tol: DefaultTrimTolerance, maxIter: DefaultTrimIterations, logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&conf)
	}
	if !isFinite(V) || V <= 0 {
		return Trim{}, configErrorf("trim.airspeed", "must be strictly positive (got %g)", V)
	}
	if !isFinite(γ) {
		return Trim{}, configErrorf("trim.gamma", "must be finite (got %g)", γ)
	}
	if !isFinite(conf.guess) {
		return Trim{}, configErrorf("trim.initial_guess", "must be finite (got %g)", conf.guess)
	}
	if conf.maxIter <= 0 || !(conf.tol > 0) {
		return Trim{}, configErrorf("trim", "needs a positive tolerance and iteration bound (got %g, %d)", conf.tol, conf.maxIter)
	}
	if math.Abs(aero.Coefficients.CMδ) < elevatorε {
		return Trim{}, configErrorf("coefficients.cm_delta", "elevator has no pitch effectiveness (CMδ=%g)", aero.Coefficients.CMδ)
	}

	f := func(α float64) float64 { return aero.Equilibrium(α, V, γ) }
	α, iters, err := secant(f, conf.guess, conf.tol, conf.maxIter, conf.logger)
	if err != nil {
		return Trim{}, err
	}
	δ := aero.Coefficients.TrimElevator(α)
	θ := α + γ
	trim := Trim{
		Airspeed:   V,
		Gamma:      γ,
		Alpha:      α,
		Delta:      δ,
		Theta:      θ,
		Ub:         V * math.Cos(α),
		Wb:         V * math.Sin(α),
		Thrust:     aero.RequiredThrust(α, δ, θ, V),
		Iterations: iters,
	}
	conf.logger.Log("level", "info", "subsys", "trim", "α(rad)", trim.Alpha, "δ(rad)", trim.Delta, "thrust(N)", trim.Thrust, "iterations", iters)
	return trim, nil
}

// secant finds a root of f starting from x0, with a second point offset by a relative and an
// absolute 1e-4.
func secant(f func(float64) float64, x0, tol float64, maxIter int, logger log.Logger) (float64, int, error) {
	p0 := x0
	p1 := x0 * (1 + secantε)
	if p1 >= 0 {
		p1 += secantε
	} else {
		p1 -= secantε
	}
	q0, q1 := f(p0), f(p1)
	if q0 == 0 {
		return p0, 0, nil
	}
	for iter := 1; iter <= maxIter; iter++ {
		if q1 == q0 {
			return p1, iter, &TrimError{Iterations: iter, Alpha: p1, Residual: q1, Reason: "zero secant slope"}
		}
		p := p1 - q1*(p1-p0)/(q1-q0)
		if !isFinite(p) {
			return p1, iter, &TrimError{Iterations: iter, Alpha: p1, Residual: q1, Reason: "non-finite iterate"}
		}
		logger.Log("level", "debug", "subsys", "trim", "iter", iter, "α(rad)", p, "residual(N)", q1)
		if math.Abs(p-p1) <= tol*(1+math.Abs(p)) {
			return p, iter, nil
		}
		p0, q0 = p1, q1
		p1, q1 = p, f(p)
		if q1 == 0 {
			return p1, iter, nil
		}
	}
	return p1, maxIter, &TrimError{Iterations: maxIter, Alpha: p1, Residual: q1, Reason: "did not converge"}
}

// TrimCache memoizes SolveTrim. The solve is idempotent for a given model, so results are
// keyed on the airspeed, the flight path angle and the initial guess only.
type TrimCache struct {
	aero    Aerodynamics
	mu      sync.Mutex
	entries map[[3]float64]Trim
}

// NewTrimCache returns an empty cache bound to aero.
func NewTrimCache(aero Aerodynamics) *TrimCache {
	return &TrimCache{aero: aero, entries: make(map[[3]float64]Trim)}
}

// Solve returns the cached trim if any, otherwise solves and stores it. Failures are not cached.
func (c *TrimCache) Solve(V, γ, guess float64) (Trim, error) {
	key := [3]float64{V, γ, guess}
	c.mu.Lock()
	defer c.mu.Unlock()
	if trim, found := c.entries[key]; found {
		return trim, nil
	}
	trim, err := SolveTrim(c.aero, V, γ, WithInitialGuess(guess))
	if err != nil {
		return Trim{}, err
	}
	c.entries[key] = trim
	return trim, nil
}

// Len returns the number of cached trims.
func (c *TrimCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
