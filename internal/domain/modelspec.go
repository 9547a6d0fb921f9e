package domain

// Support describes the domain of a parameter.
type Support int

const (
	// SupportReal is an unconstrained real-valued parameter.
	SupportReal Support = iota
	// SupportPositive is a parameter constrained to (0, inf), such as a
	// scale. The sampler proposes these in log space.
	SupportPositive
)

// PriorFamily identifies a prior distribution family.
type PriorFamily string

const (
	// PriorNormal is a Gaussian prior, used zero-centered with moderate
	// variance as the weakly-informative choice for locations and slopes.
	PriorNormal PriorFamily = "normal"
	// PriorHalfCauchy is a heavy-tailed positive-only prior, the
	// weakly-informative choice for scale parameters.
	PriorHalfCauchy PriorFamily = "half_cauchy"
)

// PriorArg is one argument of a prior (location or scale). It is either
// a constant or a reference to another parameter of the same spec, which
// is how hyperpriors are expressed: a per-group slope's prior location
// references mu_slope.
type PriorArg struct {
	Value float64 `json:"value,omitempty"`
	Param string  `json:"param,omitempty"`
}

// Const builds a constant prior argument.
func Const(v float64) PriorArg { return PriorArg{Value: v} }

// Ref builds a prior argument referencing another parameter by name.
func Ref(name string) PriorArg { return PriorArg{Param: name} }

// IsRef reports whether the argument references another parameter.
func (a PriorArg) IsRef() bool { return a.Param != "" }

// Prior is a declarative prior distribution on one parameter.
type Prior struct {
	Family PriorFamily `json:"family"`
	Loc    PriorArg    `json:"loc"`
	Scale  PriorArg    `json:"scale"`
}

// Parameter is one named parameter of a model spec.
type Parameter struct {
	Name    string  `json:"name"`
	Support Support `json:"support"`
	Prior   Prior   `json:"prior"`
}

// LikelihoodFamily identifies the observation model family.
type LikelihoodFamily string

// LikelihoodNormal ties each outcome to its location with Gaussian noise.
const LikelihoodNormal LikelihoodFamily = "normal"

// Likelihood declares how parameters and predictors combine into the
// location for each observation. The location for record i in group g is
//
//	intercept[g] + slope[g] * x_i
//
// where InterceptParams and SlopeParams are indexed by group code. A
// pooled spec has a single entry used for every observation.
type Likelihood struct {
	Family          LikelihoodFamily `json:"family"`
	InterceptParams []string         `json:"interceptParams"`
	SlopeParams     []string         `json:"slopeParams"`
	NoiseParam      string           `json:"noiseParam"`
}

// ModelSpec is an abstract description of a regression structure:
// named parameters with priors, a deterministic link from parameters and
// predictors to a location, and a likelihood tying locations to observed
// outcomes. It is owned by the builder that creates it and consumed once
// by the inference engine.
type ModelSpec struct {
	Name       string          `json:"name"`
	Strategy   PoolingStrategy `json:"strategy"`
	Params     []Parameter     `json:"params"`
	Likelihood Likelihood      `json:"likelihood"`

	// Observations. X is the predictor (log area), Y the outcome
	// (log price), GroupIdx the group code per observation. All three
	// have equal length; GroupIdx entries are all zero for pooled and
	// single-group specs.
	X        []float64 `json:"x"`
	Y        []float64 `json:"y"`
	GroupIdx []int     `json:"groupIdx"`

	// Groups carries the label per group code, for reporting.
	Groups []string `json:"groups"`
}

// NumParams returns the number of parameters in the spec.
func (m *ModelSpec) NumParams() int { return len(m.Params) }

// ObservationCount returns the number of observations fed to the likelihood.
func (m *ModelSpec) ObservationCount() int { return len(m.Y) }

// ParamIndex returns the index of a named parameter.
func (m *ModelSpec) ParamIndex(name string) (int, bool) {
	for i, p := range m.Params {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ParamNames returns the ordered parameter names.
func (m *ModelSpec) ParamNames() []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return names
}
