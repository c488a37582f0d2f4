package aeroplane

import (
	"fmt"
	"math"
)

// State is one sample of the longitudinal flight state.
// Ze is positive up: it is the altitude gained since the start of the run.
type State struct {
	T      float64 // simulation time
	Theta  float64 // pitch angle, rad
	Q      float64 // pitch rate, rad/s
	Xe, Ze float64 // inertial position, m
	Ub, Wb float64 // body axis velocities, m/s (wb positive toward the belly)
	Alpha  float64 // angle of attack, rad
	Gamma  float64 // flight path angle, rad
	Delta  float64 // elevator deflection in effect at T, rad
	Moment float64 // aerodynamic pitching moment, N.m
	Thrust float64 // required thrust, N
}

// Airspeed returns the norm of the body axis velocity.
func (s State) Airspeed() float64 {
	return math.Hypot(s.Ub, s.Wb)
}

// nonFinite returns the name of the first non-finite field, or an empty string.
func (s State) nonFinite() string {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"theta", s.Theta}, {"q", s.Q}, {"xe", s.Xe}, {"ze", s.Ze}, {"ub", s.Ub}, {"wb", s.Wb},
		{"alpha", s.Alpha}, {"gamma", s.Gamma}, {"moment", s.Moment}, {"thrust", s.Thrust},
	} {
		if !isFinite(f.val) {
			return f.name
		}
	}
	return ""
}

func (s State) String() string {
	return fmt.Sprintf("t=%.3f θ=%.6f q=%.6f xe=%.2f ze=%.2f ub=%.4f wb=%.4f α=%.6f γ=%.6f δ=%.4f M=%.2f", s.T, s.Theta, s.Q, s.Xe, s.Ze, s.Ub, s.Wb, s.Alpha, s.Gamma, s.Delta, s.Moment)
}

// History is the ordered sequence of samples of a run, one per time step.
type History []State

// Series is a History laid out as parallel named columns.
type Series struct {
	T, Theta, Q, Xe, Ze, Ub, Wb, Alpha, Gamma, Delta, Moment, Thrust []float64
}

// SeriesNames lists the columns of a Series in export order.
var SeriesNames = []string{"t", "theta", "q", "xe", "ze", "ub", "wb", "alpha", "gamma", "delta", "moment", "thrust"}

// Series returns the columns of the history.
func (h History) Series() Series {
	n := len(h)
	s := Series{
		T: make([]float64, n), Theta: make([]float64, n), Q: make([]float64, n),
		Xe: make([]float64, n), Ze: make([]float64, n), Ub: make([]float64, n), Wb: make([]float64, n),
		Alpha: make([]float64, n), Gamma: make([]float64, n), Delta: make([]float64, n),
		Moment: make([]float64, n), Thrust: make([]float64, n),
	}
	for i, st := range h {
		s.T[i] = st.T
		s.Theta[i] = st.Theta
		s.Q[i] = st.Q
		s.Xe[i] = st.Xe
		s.Ze[i] = st.Ze
		s.Ub[i] = st.Ub
		s.Wb[i] = st.Wb
		s.Alpha[i] = st.Alpha
		s.Gamma[i] = st.Gamma
		s.Delta[i] = st.Delta
		s.Moment[i] = st.Moment
		s.Thrust[i] = st.Thrust
	}
	return s
}

// Columns returns the series in the order of SeriesNames.
func (s Series) Columns() [][]float64 {
	return [][]float64{s.T, s.Theta, s.Q, s.Xe, s.Ze, s.Ub, s.Wb, s.Alpha, s.Gamma, s.Delta, s.Moment, s.Thrust}
}
