package lorenz

import "math"

const (
	// Beta is fixed for every session.
	Beta = 8.0 / 3.0
	// H is the integration step size.
	H = 0.01
)

// Params holds the coefficients of one session. Rho and Sigma must be
// bit-identical on both peers or the coupled trajectories never converge.
type Params struct {
	Sigma float64
	Rho   float64
	Beta  float64
	H     float64
}

// NewParams returns Params with the fixed Beta and H.
func NewParams(rho, sigma float64) Params {
	return Params{Sigma: sigma, Rho: rho, Beta: Beta, H: H}
}

// State is a point of the trajectory.
type State struct {
	X, Y, Z float64
}

// Step advances s by one tick. When coupling is non-nil its value replaces
// s.X as the driving variable.
//
// The explicit float64 conversions stop the compiler from fusing a multiply
// and an add into one FMA instruction, which would change the rounding on
// some architectures.
func Step(s State, coupling *float64, p Params) State {
	x := s.X
	if coupling != nil {
		x = *coupling
	}
	dx := float64(float64(p.Sigma*(s.Y-x)) * p.H)
	dy := float64(float64(float64(x*(p.Rho-s.Z))-s.Y) * p.H)
	dz := float64(float64(float64(x*s.Y)-float64(p.Beta*s.Z)) * p.H)
	return State{
		X: x + dx,
		Y: s.Y + dy,
		Z: s.Z + dz,
	}
}

// Coupled advances s with the peer's x as the driving variable.
func Coupled(s State, x float64, p Params) State {
	return Step(s, &x, p)
}

// Free advances s without coupling.
func Free(s State, p Params) State {
	return Step(s, nil, p)
}

// Perturb nudges every coordinate by eps.
func (s State) Perturb(eps float64) State {
	return State{X: s.X + eps, Y: s.Y + eps, Z: s.Z + eps}
}

// Finite reports whether all coordinates are finite numbers.
func (s State) Finite() bool {
	return !math.IsNaN(s.X) && !math.IsInf(s.X, 0) &&
		!math.IsNaN(s.Y) && !math.IsInf(s.Y, 0) &&
		!math.IsNaN(s.Z) && !math.IsInf(s.Z, 0)
}
