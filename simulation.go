package aeroplane

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ChristopherRabotin/ode"
	"github.com/go-kit/log"
)

// Scheme selects how the equations of motion are advanced.
type Scheme uint8

const (
	// Reference advances θ and q with the slope-frozen RK4 update and the translational
	// state with forward Euler, in the order of the wind tunnel campaign's simulation.
	Reference Scheme = iota + 1
	// CoupledRK4 advances the full six-state system with classical RK4.
	CoupledRK4
)

// String returns the name of the scheme. The zero Scheme is the Reference scheme.
func (s Scheme) String() string {
	switch s {
	case 0, Reference:
		return "reference"
	case CoupledRK4:
		return "coupled-rk4"
	}
	return fmt.Sprintf("scheme(%d)", uint8(s))
}

// ParseScheme returns the scheme from its name. An empty name is the Reference scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reference":
		return Reference, nil
	case "coupled-rk4", "rk4":
		return CoupledRK4, nil
	}
	return 0, configErrorf("simulation.scheme", "unknown scheme %q", name)
}

// SimConfig is the time grid of a run, in seconds.
type SimConfig struct {
	Start, End, Step float64
	Scheme           Scheme
}

// Simulation owns the flight state and advances it through a fixed horizon.
type Simulation struct {
	Aero    Aerodynamics
	Control ElevatorControl
	trim    Trim
	conf    SimConfig
	state   State
	history History
	index   int // number of steps taken
	simOptions
}

// maxPrealloc bounds the history capacity reserved up front, in samples.
const maxPrealloc = 1 << 20

// simOptions are the observers of a run, shared by NewSimulation and RunScenario.
type simOptions struct {
	logger  log.Logger
	metrics Recorder
	sink    chan<- State
}

func newSimOptions(opts []SimOption) simOptions {
	o := simOptions{logger: log.NewNopLogger(), metrics: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SimOption configures a Simulation.
type SimOption func(*simOptions)

// WithLogger sets the logger of the simulation.
func WithLogger(l log.Logger) SimOption {
	return func(o *simOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStateSink streams every committed sample, including the initial one, to ch.
// The channel is written from the goroutine running the simulation and is never closed by it.
func WithStateSink(ch chan<- State) SimOption {
	return func(o *simOptions) { o.sink = ch }
}

// WithRecorder records step and run metrics.
func WithRecorder(r Recorder) SimOption {
	return func(o *simOptions) {
		if r != nil {
			o.metrics = r
		}
	}
}

// NewSimulation returns a Simulation initialized at the trim condition.
func NewSimulation(aero Aerodynamics, trim Trim, ctrl ElevatorControl, conf SimConfig, opts ...SimOption) (*Simulation, error) {
	if !isFinite(conf.Step) || conf.Step <= 0 {
		return nil, configErrorf("simulation.step", "must be strictly positive (got %g)", conf.Step)
	}
	if !isFinite(conf.Start) || !isFinite(conf.End) {
		return nil, configErrorf("simulation", "start and end must be finite (got %g, %g)", conf.Start, conf.End)
	}
	if ctrl == nil {
		return nil, configErrorf("control", "may not be nil")
	}
	if conf.Scheme == 0 {
		conf.Scheme = Reference
	} else if conf.Scheme != Reference && conf.Scheme != CoupledRK4 {
		return nil, configErrorf("simulation.scheme", "unknown scheme %d", conf.Scheme)
	}
	// Long horizons grow the history on demand.
	samples := 1
	if n := math.Ceil((conf.End - conf.Start) / conf.Step); n > 0 {
		samples += int(math.Min(n, maxPrealloc))
	}
	s := &Simulation{
		Aero:       aero,
		Control:    ctrl,
		trim:       trim,
		conf:       conf,
		history:    make(History, 0, samples),
		simOptions: newSimOptions(opts),
	}
	δ := ctrl.Deflection(conf.Start)
	initial := State{
		T:      conf.Start,
		Theta:  trim.Theta,
		Ub:     trim.Ub,
		Wb:     trim.Wb,
		Alpha:  trim.Alpha,
		Gamma:  trim.Gamma,
		Delta:  δ,
		Moment: aero.Moment(trim.Alpha, δ, trim.Airspeed),
		Thrust: trim.Thrust,
	}
	if field := initial.nonFinite(); field != "" {
		return nil, configErrorf("trim", "initial %s is not finite", field)
	}
	s.push(initial)
	return s, nil
}

// State returns the latest sample.
func (s *Simulation) State() State {
	return s.state
}

// History returns every sample committed so far.
func (s *Simulation) History() History {
	return s.history
}

// Done returns whether the end of the horizon has been reached.
func (s *Simulation) Done() bool {
	return !(s.state.T < s.conf.End)
}

// timeAt returns the time of sample i. Time is indexed rather than accumulated so that a
// horizon which is a multiple of the step yields exactly one sample per step.
func (s *Simulation) timeAt(i int) float64 {
	return s.conf.Start + float64(i)*s.conf.Step
}

// LogStatus logs the current state of the simulation.
func (s *Simulation) LogStatus() {
	s.logger.Log("level", "info", "subsys", "sim", "t", s.state.T, "scheme", s.conf.Scheme, "control", s.Control.Reason(), "state", s.state)
}

// Step advances the simulation by one time step, even if the horizon has been reached.
func (s *Simulation) Step() error {
	if s.conf.Scheme == CoupledRK4 {
		return s.integrate(context.Background(), 1)
	}
	return s.commit(s.referenceStep())
}

// Run advances the simulation until the end of the horizon, a divergence, or the cancellation
// of ctx. The history is returned in every case.
func (s *Simulation) Run(ctx context.Context) (History, error) {
	s.LogStatus()
	start := time.Now()
	var err error
	if s.conf.Scheme == CoupledRK4 {
		err = s.integrate(ctx, -1)
	} else {
		for !s.Done() {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = s.Step(); err != nil {
				break
			}
		}
	}
	elapsed := time.Since(start)
	s.metrics.ObserveRun(len(s.history), err, elapsed)
	if err != nil {
		s.logger.Log("level", "critical", "subsys", "sim", "status", "aborted", "t", s.state.T, "samples", len(s.history), "err", err)
		return s.history, err
	}
	s.logger.Log("level", "notice", "subsys", "sim", "status", "finished", "samples", len(s.history), "duration", elapsed)
	s.LogStatus()
	return s.history, nil
}

// commit appends next to the history unless it is not finite.
func (s *Simulation) commit(next State) error {
	if field := next.nonFinite(); field != "" {
		s.logger.Log("level", "critical", "subsys", "sim", "diverged", field, "t", next.T, "last", s.state)
		return &DivergenceError{Index: len(s.history) - 1, Time: s.state.T, Field: field}
	}
	s.index++
	s.push(next)
	return nil
}

func (s *Simulation) push(st State) {
	s.state = st
	s.history = append(s.history, st)
	s.metrics.ObserveStep(st)
	if s.sink != nil {
		s.sink <- st
	}
}

// rk4 is the pitch update of the reference scheme: the four stages reuse the slope f of the
// start of the step rather than re-evaluating the dynamics.
func rk4(x, f, dt float64) float64 {
	k1 := f
	k2 := f + 0.5*dt*k1
	k3 := f + 0.5*dt*k2
	k4 := f + dt*k3
	return x + (dt/6)*(k1+2*k2+2*k3+k4)
}

// referenceStep returns the next sample of the Reference scheme.
// The forces use the trim airspeed, and α, γ are derived from the velocities of the previous
// sample, so they lag the velocity update by one step.
func (s *Simulation) referenceStep() State {
	var (
		cur = s.state
		ac  = s.Aero.Aircraft
		V   = s.trim.Airspeed
		dt  = s.conf.Step
		δ   = cur.Delta
		m   = ac.Mass
		g   = ac.Gravity
	)
	θ := rk4(cur.Theta, cur.Q, dt)
	α := math.Atan2(cur.Wb, cur.Ub)
	γ := θ - α
	moment := s.Aero.Moment(α, δ, V)
	thrust := s.Aero.RequiredThrust(α, δ, θ, V)
	q := rk4(cur.Q, moment/ac.Iyy, dt)

	sθ, cθ := math.Sin(θ), math.Cos(θ)
	xe := cur.Xe + (cur.Ub*cθ+cur.Wb*sθ)*dt
	ze := cur.Ze - (-cur.Ub*sθ+cur.Wb*cθ)*dt

	L := s.Aero.Lift(α, δ, V)
	D := s.Aero.Drag(α, δ, V)
	sα, cα := math.Sin(α), math.Cos(α)
	ub := cur.Ub + (L*sα/m-D*cα/m-q*cur.Wb-g*sθ+thrust/m)*dt
	wb := cur.Wb + (-L*cα/m-D*sα/m+q*ub+g*cθ)*dt

	t := s.timeAt(s.index + 1)
	return State{T: t, Theta: θ, Q: q, Xe: xe, Ze: ze, Ub: ub, Wb: wb, Alpha: α, Gamma: γ, Delta: s.Control.Deflection(t), Moment: moment, Thrust: thrust}
}

// integrate runs the CoupledRK4 scheme for n steps, or until the horizon if n is negative.
func (s *Simulation) integrate(ctx context.Context, n int) error {
	p := &rk4Propagator{sim: s, ctx: ctx, budget: n}
	ode.NewRK4(0, s.conf.Step, p).Solve() // Blocking.
	return p.err
}

// rk4Propagator is the ode.Integrable of the CoupledRK4 scheme.
// The state vector is [θ q xe ze ub wb]; the elevator is held for the whole step.
type rk4Propagator struct {
	sim    *Simulation
	ctx    context.Context
	budget int
	err    error
}

// GetState implements the ode.Integrable interface.
func (p *rk4Propagator) GetState() []float64 {
	st := p.sim.state
	return []float64{st.Theta, st.Q, st.Xe, st.Ze, st.Ub, st.Wb}
}

// SetState implements the ode.Integrable interface.
func (p *rk4Propagator) SetState(t float64, s []float64) {
	sim := p.sim
	θ, ub, wb := s[0], s[4], s[5]
	α := math.Atan2(wb, ub)
	V := math.Hypot(ub, wb)
	next := State{
		T:     sim.timeAt(sim.index + 1),
		Theta: θ,
		Q:     s[1],
		Xe:    s[2],
		Ze:    s[3],
		Ub:    ub,
		Wb:    wb,
		Alpha: α,
		Gamma: θ - α,
	}
	δ := sim.state.Delta
	next.Delta = sim.Control.Deflection(next.T)
	next.Moment = sim.Aero.Moment(α, δ, V)
	next.Thrust = sim.Aero.RequiredThrust(α, δ, θ, V)
	if err := sim.commit(next); err != nil {
		p.err = err
	}
	if p.budget > 0 {
		p.budget--
	}
}

// Stop implements the ode.Integrable interface.
func (p *rk4Propagator) Stop(t float64) bool {
	if p.err != nil || p.budget == 0 {
		return true
	}
	if err := p.ctx.Err(); err != nil {
		p.err = err
		return true
	}
	return p.budget < 0 && p.sim.Done()
}

// Func implements the ode.Integrable interface.
func (p *rk4Propagator) Func(t float64, f []float64) (fDot []float64) {
	var (
		aero = p.sim.Aero
		ac   = aero.Aircraft
		m    = ac.Mass
		g    = ac.Gravity
		δ    = p.sim.state.Delta
	)
	θ, q, ub, wb := f[0], f[1], f[4], f[5]
	α := math.Atan2(wb, ub)
	V := math.Hypot(ub, wb)
	L := aero.Lift(α, δ, V)
	D := aero.Drag(α, δ, V)
	thrust := aero.RequiredThrust(α, δ, θ, V)
	sθ, cθ := math.Sin(θ), math.Cos(θ)
	sα, cα := math.Sin(α), math.Cos(α)

	fDot = make([]float64, 6)
	fDot[0] = q
	fDot[1] = aero.Moment(α, δ, V) / ac.Iyy
	fDot[2] = ub*cθ + wb*sθ
	fDot[3] = -(-ub*sθ + wb*cθ)
	fDot[4] = L*sα/m - D*cα/m - q*wb - g*sθ + thrust/m
	fDot[5] = -L*cα/m - D*sα/m + q*ub + g*cθ
	return
}

func (s *Simulation) String() string {
	return fmt.Sprintf("%s simulation [%g, %g) Δt=%g with %s", s.conf.Scheme, s.conf.Start, s.conf.End, s.conf.Step, s.Control.Reason())
}
