package spline

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

const tol = 1e-9

func near(a, b r2.Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func build(pts ...r2.Point) *Spline {
	sp := New()
	for _, p := range pts {
		sp.AddControlPoint(p)
	}
	return sp
}

func circlePoints(n int, radius float64) []r2.Point {
	pts := make([]r2.Point, n)
	for i := range pts {
		a := float64(i) * math.Pi / float64(n-1)
		pts[i] = r2.Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

func TestAddControlPoint_Knots(t *testing.T) {
	sp := build(r2.Point{X: 3, Y: 1}, r2.Point{X: -2, Y: 4}, r2.Point{X: 0, Y: 0}, r2.Point{X: 7, Y: 7})

	knots := sp.Knots()
	for i, k := range knots {
		if k != float64(i) {
			t.Errorf("knot %d = %v, want %v", i, k, float64(i))
		}
		if i > 0 && k <= knots[i-1] {
			t.Errorf("knots not strictly increasing at %d: %v", i, knots)
		}
	}

	lo, hi := sp.Domain()
	if lo != knots[0] || hi != knots[len(knots)-1] {
		t.Errorf("Domain() = (%v, %v), want (%v, %v)", lo, hi, knots[0], knots[len(knots)-1])
	}
	if sp.Len() != 4 {
		t.Errorf("Len() = %d, want 4", sp.Len())
	}
}

func TestDomain_Empty(t *testing.T) {
	lo, hi := New().Domain()
	if lo != 0 || hi != 0 {
		t.Errorf("Domain() on empty spline = (%v, %v), want (0, 0)", lo, hi)
	}
}

func TestEvaluate_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		sp   *Spline
	}{
		{"empty", New()},
		{"single point", build(r2.Point{X: 4, Y: -3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, param := range []float64{-5, 0, 0.5, 1, 12} {
				if got := tt.sp.Evaluate(param); got != (r2.Point{}) {
					t.Errorf("Evaluate(%v) = %v, want origin", param, got)
				}
			}
		})
	}
}

func TestEvaluate_PassesThroughKnots(t *testing.T) {
	pts := []r2.Point{{X: 0, Y: 10}, {X: 5, Y: 0}, {X: 10, Y: 10}, {X: 12, Y: 3}, {X: 15, Y: 8}}
	sp := build(pts...)

	for i, k := range sp.Knots() {
		if got := sp.Evaluate(k); !near(got, pts[i], tol) {
			t.Errorf("Evaluate(%v) = %v, want %v", k, got, pts[i])
		}
	}
}

func TestEvaluate_Clamps(t *testing.T) {
	first, last := r2.Point{X: -6, Y: 2}, r2.Point{X: 9, Y: -1}
	sp := build(first, r2.Point{X: 0, Y: 5}, last)

	tests := []struct {
		param float64
		want  r2.Point
	}{
		{-0.001, first},
		{-3, first},
		{math.Inf(-1), first},
		{2.001, last},
		{40, last},
		{math.Inf(1), last},
	}

	for _, tt := range tests {
		if got := sp.Evaluate(tt.param); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.param, got, tt.want)
		}
	}
}

func TestEvaluate_NaNDoesNotPanic(t *testing.T) {
	sp := build(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1})
	_ = sp.Evaluate(math.NaN())
}

func TestEvaluate_FlatEnds(t *testing.T) {
	sp := build(r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 4}, r2.Point{X: 8, Y: 0})

	// zero end tangents: the curve leaves the first knot with vanishing speed
	if d := sp.Derivative(DiffStep).Norm(); d > 0.1 {
		t.Errorf("derivative near the first knot = %v, want close to 0", d)
	}
	if d := sp.Derivative(2 - DiffStep).Norm(); d > 0.1 {
		t.Errorf("derivative near the last knot = %v, want close to 0", d)
	}
}

func TestEvaluate_InteriorTangent(t *testing.T) {
	sp := build(r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 4}, r2.Point{X: 8, Y: 0})

	// central difference of the neighbours over their span of 2; the finite
	// difference straddles a jump in the second derivative, hence the loose bound
	want := r2.Point{X: 4, Y: 0}
	if got := sp.Derivative(1); !near(got, want, 1e-2) {
		t.Errorf("Derivative(1) = %v, want %v", got, want)
	}
}

func TestHermite_UnitSpan(t *testing.T) {
	p0, p1 := r2.Point{X: 1, Y: 2}, r2.Point{X: 5, Y: -2}
	v0, v1 := r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 3}

	if got := Hermite(p0, v0, 3, p1, v1, 4, 3); !near(got, p0, tol) {
		t.Errorf("Hermite at t0 = %v, want %v", got, p0)
	}
	if got := Hermite(p0, v0, 3, p1, v1, 4, 4); !near(got, p1, tol) {
		t.Errorf("Hermite at t1 = %v, want %v", got, p1)
	}

	// standard basis at s = 0.5: h00 = h01 = 0.5, h10 = 0.125, h11 = -0.125
	want := p0.Mul(0.5).Add(p1.Mul(0.5)).Add(v0.Mul(0.125)).Sub(v1.Mul(0.125))
	if got := Hermite(p0, v0, 3, p1, v1, 4, 3.5); !near(got, want, tol) {
		t.Errorf("Hermite at midpoint = %v, want %v", got, want)
	}
}

func TestDerivatives_MatchCentralDifferences(t *testing.T) {
	tests := []struct {
		name string
		pts  []r2.Point
	}{
		{"straight line", []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 4, Y: 2}, {X: 6, Y: 3}}},
		{"half circle", circlePoints(7, 5)},
		{"valley", []r2.Point{{X: 0, Y: 10}, {X: 5, Y: 0}, {X: 10, Y: 10}}},
	}

	const h = 0.001
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := build(tt.pts...)
			_, hi := sp.Domain()
			for param := 0.05; param < hi; param += 0.37 {
				fwd, mid, back := sp.Evaluate(param+h), sp.Evaluate(param), sp.Evaluate(param-h)

				d1 := r2.Point{X: (fwd.X - back.X) / (2 * h), Y: (fwd.Y - back.Y) / (2 * h)}
				if got := sp.Derivative(param); !near(got, d1, 1e-6) {
					t.Errorf("Derivative(%v) = %v, want %v", param, got, d1)
				}

				d2 := r2.Point{X: (fwd.X - 2*mid.X + back.X) / (h * h), Y: (fwd.Y - 2*mid.Y + back.Y) / (h * h)}
				if got := sp.SecondDerivative(param); !near(got, d2, 1e-3) {
					t.Errorf("SecondDerivative(%v) = %v, want %v", param, got, d2)
				}
			}
		})
	}
}

func TestDerivatives_StraightLineHasNoCurvature(t *testing.T) {
	sp := build(r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 1}, r2.Point{X: 4, Y: 2}, r2.Point{X: 6, Y: 3})

	for _, param := range []float64{0.4, 1.2, 1.5, 2.6} {
		d1, d2 := sp.Derivative(param), sp.SecondDerivative(param)
		if c := d1.Cross(d2); math.Abs(c) > 1e-3 {
			t.Errorf("cross(T, T'') at %v = %v, want ~0", param, c)
		}
	}
}

func TestSample(t *testing.T) {
	if pts := New().Sample(DefaultSamples); pts != nil {
		t.Errorf("Sample on empty spline = %v, want nil", pts)
	}

	first, last := r2.Point{X: -5, Y: 0}, r2.Point{X: 5, Y: 1}
	sp := build(first, r2.Point{X: 0, Y: -3}, last)
	pts := sp.Sample(DefaultSamples)

	if len(pts) != DefaultSamples+1 {
		t.Fatalf("Sample returned %d points, want %d", len(pts), DefaultSamples+1)
	}
	if !near(pts[0], first, tol) || !near(pts[len(pts)-1], last, tol) {
		t.Errorf("Sample endpoints = %v, %v, want %v, %v", pts[0], pts[len(pts)-1], first, last)
	}
}

func TestControlPoints_ReturnsCopy(t *testing.T) {
	sp := build(r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2})

	cps := sp.ControlPoints()
	cps[0] = r2.Point{X: 99, Y: 99}

	if sp.ControlPoints()[0] != (r2.Point{X: 1, Y: 1}) {
		t.Error("ControlPoints exposed internal storage")
	}
}
