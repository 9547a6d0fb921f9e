// Package service contains the business logic layer for poolfit.
//
// Services coordinate between handlers and repositories, implementing
// domain rules and orchestrating operations across multiple repositories.
//
// Services depend on repository interfaces defined in this package,
// following the dependency inversion principle:
//
//   - DatasetService owns dataset registration and preparation
//   - FitService orchestrates the fit pipeline across the three
//     pooling strategies and the inference engine
//   - ComparisonService derives shrinkage summaries from traces
//
// # Thread Safety
//
// All services are designed to be safe for concurrent use from
// multiple goroutines.
package service
