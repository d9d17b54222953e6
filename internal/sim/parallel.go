package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/physics"
)

// Job is one independent run of an ensemble.
type Job struct {
	Name       string
	Body       *physics.RigidBody
	Integrator dynamo.Integrator
	Initial    dynamo.State
	Config     dynamo.Config
	// Metrics builds fresh metrics for this job's simulator.
	Metrics func() []Metric
}

// Ensemble runs independent jobs in parallel. Bodies may be shared between
// jobs since they are read-only.
type Ensemble struct {
	jobs  []Job
	limit int
}

func NewEnsemble(jobs ...Job) *Ensemble {
	return &Ensemble{jobs: jobs, limit: -1}
}

// SetLimit bounds the number of concurrently running jobs. n <= 0 removes
// the bound.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = -1
	}
	e.limit = n
}

func (e *Ensemble) Len() int { return len(e.jobs) }

// Run returns results in job order. The first failing job cancels the
// others and its error is returned.
func (e *Ensemble) Run(ctx context.Context) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i, job := range e.jobs {
		g.Go(func() error {
			res, err := job.run(ctx)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunAll runs every job to completion regardless of failures. errs[i] is
// the error of job i and results[i] holds whatever it ran before failing,
// or nil if it never started. Only ctx stops the remaining jobs.
func (e *Ensemble) RunAll(ctx context.Context) (results []*dynamo.Result, errs []error) {
	results = make([]*dynamo.Result, len(e.jobs))
	errs = make([]error, len(e.jobs))

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, job := range e.jobs {
		g.Go(func() error {
			results[i], errs[i] = job.run(ctx)
			return nil
		})
	}
	g.Wait()
	return results, errs
}

func (job Job) run(ctx context.Context) (*dynamo.Result, error) {
	s := New(job.Body, job.Integrator)
	if job.Metrics != nil {
		for _, m := range job.Metrics() {
			s.AddMetric(m)
		}
	}
	return s.Run(ctx, job.Initial, job.Config)
}
