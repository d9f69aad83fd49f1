package spline

import (
	"math"

	"github.com/golang/geo/r2"
)

// DiffStep is the parameter step used by the finite-difference derivatives.
const DiffStep = 0.001

// DefaultSamples is the number of display segments produced by Sample.
const DefaultSamples = 100

type Spline struct {
	cps []r2.Point
	ts  []float64
}

func New() *Spline {
	return &Spline{}
}

// Hermite evaluates the cubic Hermite segment between (p0, v0, t0) and
// (p1, v1, t1) at parameter t.
func Hermite(p0, v0 r2.Point, t0 float64, p1, v1 r2.Point, t1 float64, t float64) r2.Point {
	dt := t1 - t0
	s := (t - t0) / dt
	a0 := p0
	a1 := v0
	a2 := p1.Sub(p0).Mul(3.0 / dt / dt).Sub(v1.Add(v0.Mul(2)).Mul(1 / dt))
	a3 := p0.Sub(p1).Mul(2.0 / math.Pow(dt, 3)).Add(v1.Add(v0).Mul(1 / math.Pow(dt, 2)))
	return a3.Mul(s).Add(a2).Mul(s).Add(a1).Mul(s).Add(a0)
}

// AddControlPoint appends cp with parameter one past the current last knot.
func (sp *Spline) AddControlPoint(cp r2.Point) {
	t := 0.0
	if len(sp.ts) > 0 {
		t = sp.ts[len(sp.ts)-1] + 1
	}
	sp.cps = append(sp.cps, cp)
	sp.ts = append(sp.ts, t)
}

// Evaluate returns the curve point at parameter t. Parameters outside the
// domain clamp to the nearest end point; fewer than two control points
// yield the origin.
func (sp *Spline) Evaluate(t float64) r2.Point {
	n := len(sp.cps)
	if n < 2 {
		return r2.Point{}
	}

	for i := 0; i < n-1; i++ {
		if sp.ts[i] <= t && t <= sp.ts[i+1] {
			var v0, v1 r2.Point
			if i > 0 {
				v0 = sp.tangent(i)
			}
			if i < n-2 {
				v1 = sp.tangent(i + 1)
			}
			return Hermite(sp.cps[i], v0, sp.ts[i], sp.cps[i+1], v1, sp.ts[i+1], t)
		}
	}

	if t < sp.ts[0] {
		return sp.cps[0]
	}
	return sp.cps[n-1]
}

// tangent is the central-difference tangent at interior knot i.
func (sp *Spline) tangent(i int) r2.Point {
	return sp.cps[i+1].Sub(sp.cps[i-1]).Mul(1 / (sp.ts[i+1] - sp.ts[i-1]))
}

func (sp *Spline) Derivative(t float64) r2.Point {
	const h = DiffStep
	return sp.Evaluate(t + h).Sub(sp.Evaluate(t - h)).Mul(1 / (2 * h))
}

func (sp *Spline) SecondDerivative(t float64) r2.Point {
	const h = DiffStep
	return sp.Evaluate(t + h).Sub(sp.Evaluate(t).Mul(2)).Add(sp.Evaluate(t - h)).Mul(1 / (h * h))
}

// Domain returns the parameters of the first and last control points.
func (sp *Spline) Domain() (float64, float64) {
	if len(sp.ts) == 0 {
		return 0, 0
	}
	return sp.ts[0], sp.ts[len(sp.ts)-1]
}

func (sp *Spline) Len() int { return len(sp.cps) }

func (sp *Spline) ControlPoints() []r2.Point {
	out := make([]r2.Point, len(sp.cps))
	copy(out, sp.cps)
	return out
}

func (sp *Spline) Knots() []float64 {
	out := make([]float64, len(sp.ts))
	copy(out, sp.ts)
	return out
}

// Sample evaluates the curve at n+1 evenly spaced parameters across the
// domain. It returns nil while the curve is degenerate.
func (sp *Spline) Sample(n int) []r2.Point {
	if len(sp.cps) < 2 || n < 1 {
		return nil
	}
	tMin, tMax := sp.Domain()
	pts := make([]r2.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := tMin + (tMax-tMin)*float64(i)/float64(n)
		pts = append(pts, sp.Evaluate(t))
	}
	return pts
}
