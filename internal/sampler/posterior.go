package sampler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// priorArg is a prior argument resolved against the spec: either a
// constant or the index of the parameter it references.
type priorArg struct {
	value float64
	idx   int
	isRef bool
}

func (a priorArg) resolve(theta []float64) float64 {
	if a.isRef {
		return theta[a.idx]
	}
	return a.value
}

// posterior evaluates the unnormalized log posterior of a model spec at
// a point in constrained parameter space. All name references in the
// spec are resolved to indices once, at construction.
type posterior struct {
	spec       *domain.ModelSpec
	priorLoc   []priorArg
	priorScale []priorArg

	interceptIdx []int
	slopeIdx     []int
	noiseIdx     int
}

func newPosterior(spec *domain.ModelSpec) (*posterior, error) {
	if spec.NumParams() == 0 {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s has no parameters", spec.Name))
	}
	if spec.ObservationCount() == 0 {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s has no observations", spec.Name))
	}
	if len(spec.X) != len(spec.Y) || len(spec.GroupIdx) != len(spec.Y) {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s has mismatched observation vectors", spec.Name))
	}

	p := &posterior{
		spec:       spec,
		priorLoc:   make([]priorArg, spec.NumParams()),
		priorScale: make([]priorArg, spec.NumParams()),
	}

	for i, param := range spec.Params {
		loc, err := p.resolveArg(param.Prior.Loc)
		if err != nil {
			return nil, apperrors.Sampler(fmt.Errorf("spec %s, param %s: %w", spec.Name, param.Name, err))
		}
		scale, err := p.resolveArg(param.Prior.Scale)
		if err != nil {
			return nil, apperrors.Sampler(fmt.Errorf("spec %s, param %s: %w", spec.Name, param.Name, err))
		}
		p.priorLoc[i] = loc
		p.priorScale[i] = scale
	}

	var err error
	if p.interceptIdx, err = p.resolveNames(spec.Likelihood.InterceptParams); err != nil {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s likelihood: %w", spec.Name, err))
	}
	if p.slopeIdx, err = p.resolveNames(spec.Likelihood.SlopeParams); err != nil {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s likelihood: %w", spec.Name, err))
	}
	noiseIdx, ok := spec.ParamIndex(spec.Likelihood.NoiseParam)
	if !ok {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s likelihood: unknown noise parameter %q", spec.Name, spec.Likelihood.NoiseParam))
	}
	p.noiseIdx = noiseIdx

	for _, g := range spec.GroupIdx {
		if g < 0 || g >= len(p.interceptIdx) {
			return nil, apperrors.Sampler(fmt.Errorf("spec %s: group index %d out of range", spec.Name, g))
		}
	}

	return p, nil
}

func (p *posterior) resolveArg(a domain.PriorArg) (priorArg, error) {
	if !a.IsRef() {
		return priorArg{value: a.Value}, nil
	}
	idx, ok := p.spec.ParamIndex(a.Param)
	if !ok {
		return priorArg{}, fmt.Errorf("prior references unknown parameter %q", a.Param)
	}
	return priorArg{idx: idx, isRef: true}, nil
}

func (p *posterior) resolveNames(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, ok := p.spec.ParamIndex(name)
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		out[i] = idx
	}
	return out, nil
}

// logProb returns the unnormalized log posterior at theta, in
// constrained space. Points outside the support, or under a
// nonpositive referenced scale, score negative infinity.
func (p *posterior) logProb(theta []float64) float64 {
	lp := 0.0

	for i, param := range p.spec.Params {
		x := theta[i]
		loc := p.priorLoc[i].resolve(theta)
		scale := p.priorScale[i].resolve(theta)
		if scale <= 0 {
			return math.Inf(-1)
		}

		switch param.Prior.Family {
		case domain.PriorNormal:
			lp += distuv.Normal{Mu: loc, Sigma: scale}.LogProb(x)
		case domain.PriorHalfCauchy:
			if x <= loc {
				return math.Inf(-1)
			}
			lp += halfCauchyLogProb(x, loc, scale)
		default:
			return math.Inf(-1)
		}
	}

	noise := theta[p.noiseIdx]
	if noise <= 0 {
		return math.Inf(-1)
	}
	for i, y := range p.spec.Y {
		g := p.spec.GroupIdx[i]
		mu := theta[p.interceptIdx[g]] + theta[p.slopeIdx[g]]*p.spec.X[i]
		lp += distuv.Normal{Mu: mu, Sigma: noise}.LogProb(y)
	}

	return lp
}

// halfCauchyLogProb is the log density of a half-Cauchy distribution
// at x > loc: twice the Cauchy density on the positive side of the
// location. distuv has no Cauchy type, but Student's t with one degree
// of freedom is the same distribution.
func halfCauchyLogProb(x, loc, scale float64) float64 {
	return distuv.StudentsT{Mu: loc, Sigma: scale, Nu: 1}.LogProb(x) + math.Ln2
}
