// Package domain contains the core business entities and types for poolfit.
//
// This package defines:
//   - Entity types (Record, Dataset, ModelSpec, Trace, FitRun)
//   - Value objects and enums
//   - Input types for service operations
//
// # Design Philosophy
//
// Domain types are persistence-agnostic and represent the core
// statistical concepts independent of how they are stored or sampled.
// A Dataset is immutable once prepared; ModelSpecs are built by the
// model package and consumed by the sampler; Traces are owned by the
// caller for the remainder of a fit's lifetime.
//
// # Key Entities
//
//   - Record: one housing observation with derived log fields
//   - Dataset: an ordered collection of Records plus the group code mapping
//   - ModelSpec: a declarative regression structure (parameters, priors, likelihood)
//   - Trace: ordered posterior draws returned by the inference engine
//   - FitRun: one fit of a dataset across all three pooling strategies
//
// # Naming Conventions
//
// Types ending in "Input" are used for create operations.
// Types ending in "Filter" are used for query operations.
package domain
