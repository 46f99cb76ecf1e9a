package lorenz_test

import (
	"math"
	"testing"

	"github.com/TheusHen/chaoskey/chaoskey/crypto"
	"github.com/TheusHen/chaoskey/chaoskey/lorenz"
)

const syncTicks = 100

func TestStepDeterministic(t *testing.T) {
	p := lorenz.NewParams(28, 10)
	a := lorenz.State{X: 1.5, Y: -2.25, Z: 20}
	b := a
	for i := 0; i < 10000; i++ {
		a = lorenz.Free(a, p)
		b = lorenz.Free(b, p)
		if math.Float64bits(a.X) != math.Float64bits(b.X) ||
			math.Float64bits(a.Y) != math.Float64bits(b.Y) ||
			math.Float64bits(a.Z) != math.Float64bits(b.Z) {
			t.Fatalf("tick %d: %v != %v", i, a, b)
		}
	}
}

func TestStepFirstTick(t *testing.T) {
	p := lorenz.NewParams(2, 25)
	got := lorenz.Free(lorenz.State{X: -10, Y: -7, Z: 35}, p)
	if got.Y != -3.63 {
		t.Fatalf("y = %v, want -3.63", got.Y)
	}
	if got.X != -9.25 {
		t.Fatalf("x = %v, want -9.25", got.X)
	}
}

func TestStepCouplingReplacesX(t *testing.T) {
	p := lorenz.NewParams(28, 10)
	s := lorenz.State{X: 100, Y: 1, Z: 2}
	drive := 3.0
	coupled := lorenz.Coupled(s, drive, p)
	free := lorenz.Free(lorenz.State{X: drive, Y: 1, Z: 2}, p)
	if coupled != free {
		t.Fatalf("coupled %v, want %v", coupled, free)
	}
}

func TestPerturb(t *testing.T) {
	s := lorenz.State{X: 1, Y: 2, Z: 3}.Perturb(0.5)
	if s != (lorenz.State{X: 1.5, Y: 2.5, Z: 3.5}) {
		t.Fatalf("unexpected perturbed state %v", s)
	}
	if !s.Finite() {
		t.Fatalf("expected finite state")
	}
	if (lorenz.State{X: math.NaN()}).Finite() {
		t.Fatalf("NaN reported as finite")
	}
}

// converge drives r with d's x the way the responder does and returns the
// number of ticks until syncTicks consecutive matches, along with both
// states at that point.
func converge(d, r lorenz.State, p lorenz.Params, limit int) (lorenz.State, lorenz.State, int, bool) {
	var lastY, lastZ float64
	matches := 0
	for tick := 1; tick <= limit; tick++ {
		d = lorenz.Free(d, p)
		r = lorenz.Coupled(r, d.X, p)
		if d.Y == lastY && d.Z == lastZ {
			matches++
			if matches == syncTicks {
				return d, r, tick, true
			}
		} else {
			matches = 0
		}
		lastY, lastZ = r.Y, r.Z
	}
	return d, r, limit, false
}

func TestCouplingConvergesAcrossNegotiatedRange(t *testing.T) {
	for scalar := 0; scalar < 256; scalar++ {
		p := crypto.ParamsFromScalar(byte(scalar))
		_, _, ticks, ok := converge(lorenz.State{X: -10, Y: -7, Z: 35}, lorenz.State{X: 0, Y: 1, Z: 2}, p, 20000)
		if !ok {
			t.Fatalf("scalar %d (rho=%v sigma=%v): no convergence after %d ticks", scalar, p.Rho, p.Sigma, ticks)
		}
	}
}

func TestConvergenceSurvivesPerturbation(t *testing.T) {
	p := crypto.ParamsFromScalar(128)
	d, r, _, ok := converge(lorenz.State{X: -10, Y: -7, Z: 35}, lorenz.State{X: 0, Y: 1, Z: 2}, p, 20000)
	if !ok {
		t.Fatalf("initial episode did not converge")
	}
	for _, eps := range []float64{1e-12, 1e-6, 1e-3, 0.1, 1} {
		// both sides nudge the synchronized pair, then free-run apart
		// before coupling again
		pd, pr := d.Perturb(eps), r.Perturb(eps)
		for i := 0; i < 500; i++ {
			pd = lorenz.Free(pd, p)
			pr = lorenz.Free(pr, p)
		}
		nd, nr, _, ok := converge(pd, pr, p, 20000)
		if !ok {
			t.Fatalf("eps=%v: no convergence", eps)
		}
		if !nd.Finite() || !nr.Finite() {
			t.Fatalf("eps=%v: non-finite state", eps)
		}
	}
}
