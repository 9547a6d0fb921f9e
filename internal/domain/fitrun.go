package domain

import (
	"time"

	"github.com/google/uuid"
)

// FitRun represents one fit of a dataset across the three pooling
// strategies. It is created pending, picked up by the fit pipeline
// (inline or via the worker), and completed with results.
type FitRun struct {
	ID        uuid.UUID    `json:"id"`
	DatasetID uuid.UUID    `json:"datasetId"`
	Status    FitRunStatus `json:"status"`

	// Sampler settings
	Draws  int   `json:"draws"`
	Warmup int   `json:"warmup"`
	Seed   int64 `json:"seed"`

	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Results *FitResults `json:"results,omitempty"`
}

// FitRunInput represents input for creating a fit run
type FitRunInput struct {
	DatasetID string `json:"datasetId" validate:"required,uuid"`
	Draws     int    `json:"draws,omitempty" validate:"omitempty,gt=0"`
	Warmup    int    `json:"warmup,omitempty" validate:"omitempty,gte=0"`
	Seed      int64  `json:"seed,omitempty"`

	// Async enqueues the run on the worker queue instead of fitting
	// inline.
	Async bool `json:"async,omitempty"`
}

// FitRunFilter represents filter options for querying fit runs
type FitRunFilter struct {
	DatasetID *uuid.UUID
	Status    *FitRunStatus
}

// FitRunList represents a paginated list of fit runs
type FitRunList struct {
	FitRuns    []FitRun `json:"fitRuns"`
	TotalCount int64    `json:"totalCount"`
	HasMore    bool     `json:"hasMore"`
}

// GroupFit holds the per-group result of the unpooled strategy. A group
// that could not be fit carries the error text; sibling groups are
// unaffected.
type GroupFit struct {
	Group     string         `json:"group"`
	Summaries []ParamSummary `json:"summaries,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FitResults aggregates the posterior summaries of all three strategies
// plus the shrinkage comparison derived from them.
type FitResults struct {
	Pooled       []ParamSummary   `json:"pooled"`
	Unpooled     []GroupFit       `json:"unpooled"`
	Hierarchical []ParamSummary   `json:"hierarchical"`
	Comparison   *ShrinkageReport `json:"comparison,omitempty"`
}
