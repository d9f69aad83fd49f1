package gondola_test

import (
	"github.com/golang/geo/r2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/spline"
)

const (
	dt       = 0.01
	maxSteps = 20000
)

func track(pts ...r2.Point) *spline.Spline {
	sp := spline.New()
	for _, p := range pts {
		sp.AddControlPoint(p)
	}
	return sp
}

// ride steps g until it departs or maxSteps is reached and returns the
// number of steps taken.
func ride(g *gondola.Gondola, each func()) int {
	n := 0
	for g.Phase() == gondola.Moving && n < maxSteps {
		g.Step(dt)
		n++
		if each != nil {
			each()
		}
	}
	return n
}

var _ = Describe("Gondola", func() {
	var (
		valley *spline.Spline
		g      *gondola.Gondola
	)

	BeforeEach(func() {
		valley = track(r2.Point{X: 0, Y: 10}, r2.Point{X: 5, Y: 0}, r2.Point{X: 10, Y: 10})
		g = gondola.New(valley, gondola.DefaultParams())
	})

	Describe("Start", func() {
		It("begins idle", func() {
			Expect(g.Phase()).To(Equal(gondola.Idle))
			Expect(g.Reason()).To(Equal(gondola.None))
		})

		It("releases the gondola just past the first knot", func() {
			g.Start()

			p := g.Params()
			Expect(g.Phase()).To(Equal(gondola.Moving))
			Expect(g.Arc()).To(BeNumerically("~", p.StartOffset, 1e-12))
			Expect(g.Heading()).To(BeZero())
			Expect(g.Speed()).To(BeZero())

			r := valley.Evaluate(g.Arc())
			n := valley.Derivative(g.Arc()).Normalize().Ortho()
			Expect(g.Position().X).To(BeNumerically("~", r.X+n.X*p.Radius, 1e-12))
			Expect(g.Position().Y).To(BeNumerically("~", r.Y+n.Y*p.Radius, 1e-12))
		})

		It("puts the body on the left of the direction of travel", func() {
			g.Start()

			// descending to the right: the left normal points up and right
			r := valley.Evaluate(g.Arc())
			Expect(g.Position().X).To(BeNumerically(">", r.X))
			Expect(g.Position().Y).To(BeNumerically(">", r.Y))
		})

		It("records the release energy without using it", func() {
			g.Start()

			r := valley.Evaluate(g.Arc())
			p := g.Params()
			Expect(g.StartEnergy()).To(BeNumerically("~", p.Gravity*r.Y+p.EnergyOffset, 1e-9))
		})

		It("is a no-op once moving", func() {
			g.Start()
			for i := 0; i < 25; i++ {
				g.Step(dt)
			}
			arc, heading, pos := g.Arc(), g.Heading(), g.Position()

			g.Start()

			Expect(g.Phase()).To(Equal(gondola.Moving))
			Expect(g.Arc()).To(Equal(arc))
			Expect(g.Heading()).To(Equal(heading))
			Expect(g.Position()).To(Equal(pos))
		})

		It("is a no-op once departed", func() {
			g.Start()
			ride(g, nil)
			Expect(g.Phase()).To(Equal(gondola.Departed))
			arc, reason := g.Arc(), g.Reason()

			g.Start()

			Expect(g.Phase()).To(Equal(gondola.Departed))
			Expect(g.Arc()).To(Equal(arc))
			Expect(g.Reason()).To(Equal(reason))
		})
	})

	Describe("Step", func() {
		It("does nothing while idle", func() {
			g.Step(dt)

			Expect(g.Phase()).To(Equal(gondola.Idle))
			Expect(g.Arc()).To(BeZero())
			Expect(g.Position()).To(Equal(r2.Point{}))
		})

		It("does nothing after departure", func() {
			g.Start()
			ride(g, nil)
			arc, heading, pos := g.Arc(), g.Heading(), g.Position()

			for i := 0; i < 10; i++ {
				g.Step(dt)
			}

			Expect(g.Arc()).To(Equal(arc))
			Expect(g.Heading()).To(Equal(heading))
			Expect(g.Position()).To(Equal(pos))
		})

		It("leaves the state untouched for a zero-length step", func() {
			g.Start()
			arc, heading, pos := g.Arc(), g.Heading(), g.Position()

			g.Step(0)

			Expect(g.Phase()).To(Equal(gondola.Moving))
			Expect(g.Arc()).To(Equal(arc))
			Expect(g.Heading()).To(Equal(heading))
			Expect(g.Position()).To(Equal(pos))

			for i := 0; i < 40; i++ {
				g.Step(dt)
			}
			arc, heading, pos = g.Arc(), g.Heading(), g.Position()

			g.Step(0)

			Expect(g.Arc()).To(Equal(arc))
			Expect(g.Heading()).To(Equal(heading))
			Expect(g.Position()).To(Equal(pos))
		})

		It("runs no departure checks on a zero-length step", func() {
			up := gondola.New(track(r2.Point{X: 0, Y: 0}, r2.Point{X: 5, Y: 5}), gondola.DefaultParams())
			up.Start()

			up.Step(0)

			Expect(up.Phase()).To(Equal(gondola.Moving))
			Expect(up.Reason()).To(Equal(gondola.None))
			Expect(up.Accepted()).To(BeZero())
		})

		It("counts only the steps that produce a sample", func() {
			g.Start()
			for i := 0; i < 5; i++ {
				g.Step(dt)
			}
			g.Step(0)
			g.Step(-1)
			Expect(g.Accepted()).To(Equal(5))

			still := gondola.New(track(r2.Point{X: 3, Y: 3}, r2.Point{X: 3, Y: 3}), gondola.DefaultParams())
			still.Start()
			still.Step(dt)
			Expect(still.Accepted()).To(BeZero())
		})

		It("ignores negative steps", func() {
			g.Start()
			arc := g.Arc()

			g.Step(-1)

			Expect(g.Arc()).To(Equal(arc))
		})

		It("skips the step on a degenerate tangent", func() {
			// both control points coincide: the tangent vanishes everywhere
			still := gondola.New(track(r2.Point{X: 3, Y: 3}, r2.Point{X: 3, Y: 3}), gondola.DefaultParams())
			still.Start()
			arc := still.Arc()

			for i := 0; i < 10; i++ {
				still.Step(dt)
			}

			Expect(still.Phase()).To(Equal(gondola.Moving))
			Expect(still.Arc()).To(Equal(arc))
			Expect(still.Speed()).To(BeZero())
		})
	})

	Describe("riding the valley", func() {
		It("speeds up downhill, slows uphill and never climbs above the start", func() {
			g.Start()

			var speeds []float64
			n := 0
			for g.Phase() == gondola.Moving && n < maxSteps {
				before := valley.Evaluate(g.Arc())
				Expect(before.Y).To(BeNumerically("<=", 10+1e-9))

				g.Step(dt)
				n++
				if g.Phase() == gondola.Moving {
					speeds = append(speeds, g.Speed())
				}
			}

			// flat end tangents carry it just past the last knot at near-zero
			// speed, so the force never turns negative on the climb
			_, tMax := valley.Domain()
			Expect(g.Phase()).To(Equal(gondola.Departed))
			Expect(g.Reason()).To(Equal(gondola.EndOfTrack))
			Expect(g.Arc()).To(BeNumerically(">", tMax))
			Expect(g.Arc()).To(BeNumerically("<", tMax+0.01))
			Expect(speeds).NotTo(BeEmpty())
			Expect(speeds[0]).To(BeNumerically("<", 1))

			peak, peakAt := 0.0, 0
			for i, v := range speeds {
				Expect(v).To(BeNumerically(">=", 0))
				if v > peak {
					peak, peakAt = v, i
				}
			}

			// full drop of 10 units: v = sqrt(g * 10)
			Expect(peak).To(BeNumerically("<=", 20+1e-6))
			Expect(peak).To(BeNumerically(">", 18))
			Expect(peakAt).To(BeNumerically(">", 0))
			Expect(peakAt).To(BeNumerically("<", len(speeds)-1))
			Expect(speeds[len(speeds)-1]).To(BeNumerically("<", peak))
		})

		It("rolls the wheel backwards at speed over radius", func() {
			g.Start()
			for i := 0; i < 50; i++ {
				prev := g.Heading()
				g.Step(dt)
				if g.Phase() != gondola.Moving {
					break
				}
				Expect(g.Heading()).To(BeNumerically("<=", prev))
				Expect(prev - g.Heading()).To(BeNumerically("~", g.Speed()/g.Params().Radius*dt, 1e-9))
			}
		})

		It("keeps the arc parameter strictly increasing", func() {
			g.Start()
			prev := g.Arc()
			ride(g, func() {
				if g.Phase() == gondola.Moving {
					Expect(g.Arc()).To(BeNumerically(">", prev))
					prev = g.Arc()
				}
			})
		})
	})

	Describe("flat track", func() {
		It("rests with zero speed under a straight-up normal", func() {
			flat := gondola.New(track(r2.Point{X: 0, Y: 5}, r2.Point{X: 10, Y: 5}), gondola.DefaultParams())
			flat.Start()
			arc := flat.Arc()

			for i := 0; i < 200; i++ {
				flat.Step(dt)
			}

			last := flat.Last()
			Expect(flat.Phase()).To(Equal(gondola.Moving))
			Expect(flat.Arc()).To(Equal(arc))
			Expect(flat.Speed()).To(BeZero())
			Expect(last.Curvature).To(BeZero())
			Expect(last.Force).To(BeNumerically("~", flat.Params().Gravity, 1e-9))
		})
	})

	Describe("departure", func() {
		It("treats a net force of exactly zero as staying on the track", func() {
			// vertical drop: curvature and normal.y are both exactly zero
			drop := gondola.New(track(r2.Point{X: 0, Y: 10}, r2.Point{X: 0, Y: 0}), gondola.DefaultParams())
			drop.Start()

			steps := 0
			ride(drop, func() {
				if drop.Phase() == gondola.Moving {
					Expect(drop.Last().Force).To(BeZero())
				}
				steps++
			})

			Expect(steps).To(BeNumerically(">", 1))
			Expect(drop.Phase()).To(Equal(gondola.Departed))
			Expect(drop.Reason()).To(Equal(gondola.EndOfTrack))
			Expect(drop.Last().Force).To(BeZero())
		})

		It("reports the end of the track when the force never goes negative", func() {
			line := track(r2.Point{X: 0, Y: 10}, r2.Point{X: 0, Y: 0})
			drop := gondola.New(line, gondola.DefaultParams())
			drop.Start()
			ride(drop, nil)

			_, tMax := line.Domain()
			Expect(drop.Reason()).To(Equal(gondola.EndOfTrack))
			Expect(drop.Arc()).To(BeNumerically(">", tMax))
		})

		It("falls off a crest taken too fast", func() {
			hill := track(
				r2.Point{X: 0, Y: 10},
				r2.Point{X: 4, Y: 0},
				r2.Point{X: 8, Y: 2},
				r2.Point{X: 12, Y: 0},
				r2.Point{X: 16, Y: -10},
			)
			c := gondola.New(hill, gondola.DefaultParams())
			c.Start()

			ride(c, nil)

			_, tMax := hill.Domain()
			Expect(c.Phase()).To(Equal(gondola.Departed))
			Expect(c.Reason()).To(Equal(gondola.Fell))
			Expect(c.Arc()).To(BeNumerically("<", tMax))
			Expect(c.Position()).To(Equal(c.Last().Position))
		})

		It("stalls when released below a higher stretch of track", func() {
			// the start knot is the low point, so the gondola sits above its reference height
			up := gondola.New(track(r2.Point{X: 0, Y: 0}, r2.Point{X: 5, Y: 5}), gondola.DefaultParams())
			up.Start()

			up.Step(dt)

			Expect(up.Phase()).To(Equal(gondola.Departed))
			Expect(up.Reason()).To(Equal(gondola.Stalled))
		})
	})

	DescribeTable("Phase strings",
		func(p gondola.Phase, want string) {
			Expect(p.String()).To(Equal(want))
		},
		Entry("idle", gondola.Idle, "idle"),
		Entry("moving", gondola.Moving, "moving"),
		Entry("departed", gondola.Departed, "departed"),
		Entry("unknown", gondola.Phase(9), "unknown"),
	)

	DescribeTable("Reason strings",
		func(r gondola.Reason, want string) {
			Expect(r.String()).To(Equal(want))
		},
		Entry("none", gondola.None, "none"),
		Entry("fell", gondola.Fell, "fell"),
		Entry("end of track", gondola.EndOfTrack, "end_of_track"),
		Entry("stalled", gondola.Stalled, "stalled"),
	)
})
