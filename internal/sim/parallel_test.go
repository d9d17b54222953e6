package sim

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
)

var _ = Describe("Ensemble", func() {
	It("matches sequential runs regardless of scheduling", func() {
		shared := twister()
		line := mustBody(physics.Bar(0, 4, pusher))
		cfg := dynamo.Config{Dt: 0.05, Ticks: 40, ValidateState: true}

		jobs := []Job{
			{Name: "twister", Body: shared, Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
			{Name: "twister-shifted", Body: shared, Initial: dynamo.NewState(dynamo.Vec3{1, 0, 0}), Config: cfg},
			{Name: "line", Body: line, Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg,
				Metrics: func() []Metric { return []Metric{&countingMetric{}} }},
		}

		e := NewEnsemble(jobs...)
		e.SetLimit(2)
		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		for i, job := range jobs {
			want, err := New(job.Body, nil).Run(context.Background(), job.Initial, job.Config)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].States).To(Equal(want.States))
		}
		Expect(results[2].Metrics).To(HaveKeyWithValue("count", 41.0))
	})

	It("returns the first failure", func() {
		empty := mustBody(map[physics.Coord]physics.Block{})
		cfg := dynamo.Config{Dt: 0.1, Ticks: 5}
		e := NewEnsemble(
			Job{Body: twister(), Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
			Job{Body: empty, Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
		)
		_, err := e.Run(context.Background())
		Expect(err).To(MatchError(dynamo.ErrInvalidBody))
	})

	It("keeps running the other jobs when asked to run them all", func() {
		empty := mustBody(map[physics.Coord]physics.Block{})
		cfg := dynamo.Config{Dt: 0.1, Ticks: 5, ValidateState: true}
		e := NewEnsemble(
			Job{Body: twister(), Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
			Job{Body: empty, Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
			Job{Body: twister(), Integrator: diverging{}, Initial: dynamo.NewState(dynamo.Vec3{}), Config: cfg},
			Job{Body: twister(), Initial: dynamo.NewState(dynamo.Vec3{}), Config: dynamo.Config{Dt: 0}},
		)
		e.SetLimit(1)
		results, errs := e.RunAll(context.Background())
		Expect(results).To(HaveLen(4))
		Expect(errs).To(HaveLen(4))

		Expect(errs[0]).NotTo(HaveOccurred())
		Expect(results[0].StepsTaken).To(Equal(5))

		Expect(errs[1]).To(MatchError(dynamo.ErrInvalidBody))
		Expect(errs[2]).To(MatchError(dynamo.ErrInvalidState))
		Expect(results[2].States).To(HaveLen(1))

		Expect(errs[3]).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(results[3]).To(BeNil())
	})
})
