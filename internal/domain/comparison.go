package domain

// GroupEstimate is a paired (intercept, slope) point estimate for one group.
type GroupEstimate struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// ShrinkagePair pairs a group's unpooled and hierarchical estimates and
// the displacement between them. The displacement points from the
// unpooled estimate toward the partially pooled one; its direction and
// magnitude illustrate shrinkage toward the population mean.
type ShrinkagePair struct {
	Group          string        `json:"group"`
	RecordCount    int           `json:"recordCount"`
	Unpooled       GroupEstimate `json:"unpooled"`
	Hierarchical   GroupEstimate `json:"hierarchical"`
	DeltaIntercept float64       `json:"deltaIntercept"`
	DeltaSlope     float64       `json:"deltaSlope"`
	Magnitude      float64       `json:"magnitude"`
}

// ShrinkageReport aggregates per-group shrinkage pairs together with the
// population-level posterior means the per-group estimates are pulled
// toward.
type ShrinkageReport struct {
	PopulationIntercept float64         `json:"populationIntercept"` // mu_intercept posterior mean
	PopulationSlope     float64         `json:"populationSlope"`     // mu_slope posterior mean
	Pairs               []ShrinkagePair `json:"pairs"`
}
