package domain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PosteriorSample is one draw of all parameter values, ordered the same
// way as the spec's parameters.
type PosteriorSample []float64

// Trace is the ordered sequence of posterior samples returned by the
// inference engine for one model spec. It is owned by the caller for
// the remainder of the pipeline's lifetime.
type Trace struct {
	SpecName   string            `json:"specName"`
	Strategy   PoolingStrategy   `json:"strategy"`
	ParamNames []string          `json:"paramNames"`
	Draws      []PosteriorSample `json:"-"`
	Warmup     int               `json:"warmup"`
	Seed       int64             `json:"seed"`

	// AcceptRate is the post-warmup acceptance rate per parameter,
	// a coarse sampler health signal. The core does not interpret it.
	AcceptRate []float64 `json:"acceptRate,omitempty"`
}

// ParamSummary holds posterior point and interval estimates for one parameter.
type ParamSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Q5     float64 `json:"q5"`
	Median float64 `json:"median"`
	Q95    float64 `json:"q95"`
}

// Len returns the number of draws in the trace.
func (t *Trace) Len() int { return len(t.Draws) }

// Values returns the draws of a named parameter in draw order.
func (t *Trace) Values(name string) ([]float64, error) {
	idx := -1
	for i, n := range t.ParamNames {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("trace %s: unknown parameter %q", t.SpecName, name)
	}
	out := make([]float64, len(t.Draws))
	for i, d := range t.Draws {
		out[i] = d[idx]
	}
	return out, nil
}

// Mean returns the posterior mean of a named parameter.
func (t *Trace) Mean(name string) (float64, error) {
	vals, err := t.Values(name)
	if err != nil {
		return 0, err
	}
	return stat.Mean(vals, nil), nil
}

// Summary computes point and interval estimates for a named parameter.
func (t *Trace) Summary(name string) (ParamSummary, error) {
	vals, err := t.Values(name)
	if err != nil {
		return ParamSummary{}, err
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return ParamSummary{
		Name:   name,
		Mean:   stat.Mean(vals, nil),
		StdDev: stat.StdDev(vals, nil),
		Q5:     stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		Q95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}, nil
}

// Summaries computes summaries for every parameter in spec order.
func (t *Trace) Summaries() ([]ParamSummary, error) {
	out := make([]ParamSummary, 0, len(t.ParamNames))
	for _, name := range t.ParamNames {
		s, err := t.Summary(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
