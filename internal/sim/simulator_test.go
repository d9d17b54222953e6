package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/integrators"
	"github.com/san-kum/blocksim/internal/physics"
)

var pusher = physics.Block{ThrustDir: dynamo.Vec3{1, 0, 0}, ThrustForce: 1, Density: 1}

func mustBody(blocks map[physics.Coord]physics.Block) *physics.RigidBody {
	body, err := physics.NewRigidBody(blocks)
	Expect(err).NotTo(HaveOccurred())
	return body
}

// twister has asymmetric lateral thrust so it both translates and spins.
func twister() *physics.RigidBody {
	return mustBody(physics.Merge(
		physics.Bar(-3, 3, physics.Block{ThrustDir: dynamo.Vec3{0, 1, 0}, ThrustForce: 10, Density: 1}),
		map[physics.Coord]physics.Block{
			{-3, 0, 0}: {ThrustDir: dynamo.Vec3{-1, 0, 0.5}, ThrustForce: 10, Density: 1},
			{2, 1, 0}:  {ThrustDir: dynamo.Vec3{0, 0, 1}, ThrustForce: 4, Density: 3},
		},
	))
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                            { return "count" }
func (c *countingMetric) Observe(dynamo.State, dynamo.Loads, int) { c.n++ }
func (c *countingMetric) Value() float64                          { return float64(c.n) }
func (c *countingMetric) Reset()                                  { c.n = 0 }

// diverging produces a non-finite position on every step.
type diverging struct{}

func (diverging) Step(x dynamo.State, l dynamo.Loads, dt float64) (dynamo.State, error) {
	x.Position = dynamo.Vec3{math.Inf(1), 0, 0}
	return x, nil
}

var _ = Describe("Tick", func() {
	It("moves the five block line one unit along x", func() {
		body := mustBody(physics.Bar(0, 4, pusher))

		next, err := Tick(body, dynamo.NewState(dynamo.Vec3{}), 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(next.Position).To(Equal(dynamo.Vec3{1, 0, 0}))
		Expect(next.Orientation).To(Equal(dynamo.Identity()))
	})

	It("keeps a thrustless body where it is", func() {
		idle := pusher.WithThrust(dynamo.Vec3{0, 1, 0}, 0)
		body := mustBody(physics.Box(physics.Coord{-1, -1, -1}, [3]int{3, 3, 3}, idle))
		x := dynamo.State{Position: dynamo.Vec3{2, -1, 7}, Orientation: dynamo.Identity()}

		for _, dt := range []float64{0.001, 0.1, 1, 50} {
			next, err := Tick(body, x, dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(x))
		}
	})

	It("keeps the orientation at unit length over many ticks", func() {
		body := twister()
		x := dynamo.NewState(dynamo.Vec3{})
		for i := 0; i < 200; i++ {
			var err error
			x, err = Tick(body, x, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(x.Orientation.Magnitude()).To(BeNumerically("~", 1, 1e-9))
		}
		Expect(x.Orientation.AngleTo(dynamo.Identity())).To(BeNumerically(">", 0))
	})

	It("fails on a body without mass", func() {
		body := mustBody(map[physics.Coord]physics.Block{})
		_, err := Tick(body, dynamo.NewState(dynamo.Vec3{}), 1)
		Expect(err).To(MatchError(dynamo.ErrInvalidBody))
	})

	It("agrees with an explicit accumulate and step", func() {
		body := twister()
		x := dynamo.State{Position: dynamo.Vec3{0.5, 0, 0}, Orientation: dynamo.Identity()}

		l, err := physics.Accumulate(body, x.Position)
		Expect(err).NotTo(HaveOccurred())
		want, err := integrators.NewEuler().Step(x, l, 0.1)
		Expect(err).NotTo(HaveOccurred())

		got, err := Tick(body, x, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	})
})

var _ = Describe("Simulator", func() {
	var (
		body *physics.RigidBody
		cfg  dynamo.Config
	)

	BeforeEach(func() {
		body = mustBody(physics.Bar(0, 4, pusher))
		cfg = dynamo.Config{Dt: 0.1, Ticks: 10, ValidateState: true}
	})

	It("records every tick", func() {
		s := New(body, nil)
		result, err := s.Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.States).To(HaveLen(11))
		Expect(result.Times).To(HaveLen(11))
		Expect(result.Loads).To(HaveLen(10))
		Expect(result.StepsTaken).To(Equal(10))
		Expect(result.Times[10]).To(BeNumerically("~", 1.0, 1e-12))
		// constant unit acceleration applied as a velocity: 0.1 per tick
		Expect(result.Final().Position.X()).To(BeNumerically("~", 1.0, 1e-12))
		Expect(result.Loads[0].Force).To(Equal(dynamo.Vec3{5, 0, 0}))
	})

	It("takes torque about the moving position", func() {
		s := New(body, nil)
		result, err := s.Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, l := range result.Loads {
			Expect(l.Torque.Len()).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("feeds metrics and observers", func() {
		s := New(body, nil)
		m := &countingMetric{}
		s.AddMetric(m)

		var ticks []int
		s.AddObserver(ObserverFunc(func(_ dynamo.State, _ dynamo.Loads, tick int) {
			ticks = append(ticks, tick)
		}))

		result, err := s.Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Metrics).To(HaveKeyWithValue("count", 11.0))
		Expect(ticks).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	})

	It("runs zero ticks", func() {
		cfg.Ticks = 0
		result, err := New(body, nil).Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.States).To(HaveLen(1))
	})

	DescribeTable("rejects invalid configs",
		func(c dynamo.Config) {
			_, err := New(body, nil).Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), c)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		},
		Entry("zero dt", dynamo.Config{Dt: 0, Ticks: 1}),
		Entry("negative dt", dynamo.Config{Dt: -0.1, Ticks: 1}),
		Entry("NaN dt", dynamo.Config{Dt: math.NaN(), Ticks: 1}),
		Entry("infinite dt", dynamo.Config{Dt: math.Inf(1), Ticks: 1}),
		Entry("negative ticks", dynamo.Config{Dt: 0.1, Ticks: -1}),
	)

	It("rejects non-finite states when validating", func() {
		_, err := New(body, diverging{}).Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidState))

		cfg.ValidateState = false
		result, err := New(body, diverging{}).Run(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StepsTaken).To(Equal(10))
	})

	It("wraps tick failures with their position in the run", func() {
		// a zero orientation cannot be renormalized
		result, err := New(body, nil).Run(context.Background(), dynamo.State{}, cfg)
		Expect(err).To(MatchError(dynamo.ErrDegenerateOrientation))
		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(0))
		Expect(result.States).To(HaveLen(1))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := New(body, nil).Run(ctx, dynamo.NewState(dynamo.Vec3{}), cfg)
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		Expect(result.StepsTaken).To(Equal(0))
	})

	It("stops streaming when the callback declines", func() {
		seen := 0
		last, err := New(body, nil).RunWithCallback(context.Background(), dynamo.NewState(dynamo.Vec3{}), cfg,
			func(x dynamo.State, l dynamo.Loads, tick int) bool {
				seen++
				return tick < 4
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(5))
		Expect(last.Position.X()).To(BeNumerically("~", 0.4, 1e-12))
	})
})
