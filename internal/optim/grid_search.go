package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/blocksim/internal/experiment"
)

// ErrNoCandidate is returned when no point of the grid produced a result.
var ErrNoCandidate = errors.New("optim: no grid point ran successfully")

// GridSearch tries every combination of parameter values and keeps the one
// minimising a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates the grid in row-major order. Points whose build or run
// fails are recorded with their error and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Candidate, []Candidate, error) {
	all := make([]Candidate, 0, g.Size())
	best := Candidate{Score: math.Inf(1)}

	var walk func(depth int, current map[string]float64) error
	walk = func(depth int, current map[string]float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth == len(g.paramNames) {
			c := g.evaluate(ctx, current, buildExperiment, metricName)
			all = append(all, c)
			if c.Err == nil && (best.Params == nil || c.Score < best.Score) {
				best = c
			}
			return nil
		}

		for _, val := range g.ranges[depth] {
			next := make(map[string]float64, len(current)+1)
			for k, v := range current {
				next[k] = v
			}
			next[g.paramNames[depth]] = val
			if err := walk(depth+1, next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0, map[string]float64{}); err != nil {
		return best, all, err
	}
	if best.Params == nil {
		return best, all, ErrNoCandidate
	}
	return best, all, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Candidate {
	c := Candidate{Params: params, Score: math.NaN()}

	exp, err := buildExperiment(params)
	if err != nil {
		c.Err = err
		return c
	}
	result, err := exp.Run(ctx)
	if err != nil {
		c.Err = err
		return c
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		c.Err = fmt.Errorf("optim: run has no metric %q", metricName)
		return c
	}
	c.Score = val
	return c
}

// Names returns the searched parameters in a stable order.
func (c Candidate) Names() []string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
