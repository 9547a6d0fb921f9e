package domain

// PoolingStrategy identifies how much information is shared across
// groups when estimating per-group parameters.
type PoolingStrategy string

const (
	// StrategyPooled fits one global line for all groups (total pooling).
	StrategyPooled PoolingStrategy = "pooled"
	// StrategyUnpooled fits an independent line per group (no pooling).
	StrategyUnpooled PoolingStrategy = "unpooled"
	// StrategyHierarchical draws per-group lines from shared population
	// distributions (partial pooling).
	StrategyHierarchical PoolingStrategy = "hierarchical"
)

// IsValid checks if the pooling strategy is valid
func (s PoolingStrategy) IsValid() bool {
	switch s {
	case StrategyPooled, StrategyUnpooled, StrategyHierarchical:
		return true
	}
	return false
}

// FitRunStatus represents the lifecycle state of a fit run
type FitRunStatus string

const (
	FitRunStatusPending   FitRunStatus = "pending"
	FitRunStatusRunning   FitRunStatus = "running"
	FitRunStatusCompleted FitRunStatus = "completed"
	FitRunStatusFailed    FitRunStatus = "failed"
)

// IsValid checks if the fit run status is valid
func (s FitRunStatus) IsValid() bool {
	switch s {
	case FitRunStatusPending, FitRunStatusRunning, FitRunStatusCompleted, FitRunStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true once a fit run can no longer change state.
func (s FitRunStatus) IsTerminal() bool {
	return s == FitRunStatusCompleted || s == FitRunStatusFailed
}
