package aeroplane

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180
	// singularε is the relative singular value below which a least-squares design matrix is
	// treated as rank deficient.
	singularε = 1e-12
)

// Deg2Rad converts a signed angle from degrees to radians.
// Unlike a heading conversion, the sign is kept: wind-tunnel tables span negative angles.
func Deg2Rad(a float64) float64 {
	return a * deg2rad
}

// Rad2Deg converts a signed angle from radians to degrees.
func Rad2Deg(a float64) float64 {
	return a / deg2rad
}

// Deg2RadAll returns a copy of the provided angles converted to radians.
func Deg2RadAll(a []float64) []float64 {
	b := make([]float64, len(a))
	for i, val := range a {
		b[i] = Deg2Rad(val)
	}
	return b
}

// isFinite returns whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// allFinite returns the index of the first non-finite value, or -1.
func allFinite(v []float64) int {
	for i, val := range v {
		if !isFinite(val) {
			return i
		}
	}
	return -1
}

// distinct returns the number of distinct values of v (within 1e-12).
func distinct(v []float64) int {
	sorted := make([]float64, len(v))
	copy(sorted, v)
	floats.Argsort(sorted, make([]int, len(v)))
	n := 0
	for i, val := range sorted {
		if i == 0 || !scalar.EqualWithinAbs(val, sorted[i-1], 1e-12) {
			n++
		}
	}
	return n
}

// polyfit returns the least-squares polynomial coefficients of degree deg fitting y(x),
// highest power first. The fit is solved by QR on the Vandermonde design matrix.
// A nil slice is returned when the design matrix is rank deficient.
func polyfit(x, y []float64, deg int) []float64 {
	rows := len(x)
	cols := deg + 1
	if rows < cols {
		return nil
	}
	A := mat.NewDense(rows, cols, nil)
	for i, xi := range x {
		for j := 0; j < cols; j++ {
			A.Set(i, j, math.Pow(xi, float64(deg-j)))
		}
	}
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDNone) {
		return nil
	}
	values := svd.Values(nil)
	if values[0] == 0 || values[len(values)-1]/values[0] < singularε {
		return nil
	}
	var qr mat.QR
	qr.Factorize(A)
	var p mat.Dense
	if err := qr.SolveTo(&p, false, mat.NewDense(rows, 1, y)); err != nil {
		return nil
	}
	return mat.Col(nil, 0, &p)
}

// polyval evaluates the coefficients returned by polyfit at x (Horner).
func polyval(p []float64, x float64) float64 {
	var v float64
	for _, c := range p {
		v = v*x + c
	}
	return v
}
