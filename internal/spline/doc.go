// Package spline provides the path model: an append-only set of 2D control
// points joined by cubic Hermite segments.
//
// Control point i carries the parameter i, so the domain of a curve with n
// points is [0, n-1]. Interior knots use the central difference of their
// neighbours as tangent; the first and last knots use a zero tangent, which
// makes the curve start and end flat.
//
//   - [Spline.Evaluate]: point on the curve, clamped outside the domain
//   - [Spline.Derivative], [Spline.SecondDerivative]: central finite
//     differences of Evaluate with step [DiffStep]
//   - [Spline.Sample]: evenly spaced polyline for display
//
// # Example
//
//	sp := spline.New()
//	sp.AddControlPoint(r2.Point{X: -8, Y: 6})
//	sp.AddControlPoint(r2.Point{X: 0, Y: -4})
//	sp.AddControlPoint(r2.Point{X: 8, Y: 2})
//	p := sp.Evaluate(0.5)
//
// A Spline is not safe for concurrent use.
package spline
