// Package model builds the three regression structures compared by
// poolfit: pooled (one global line), unpooled (an independent line per
// group), and hierarchical (per-group lines drawn from shared
// population distributions, yielding partial pooling).
//
// Builders accumulate named parameters, priors, and a likelihood
// declaration into an explicit domain.ModelSpec value. The spec is
// independent of any particular inference engine; the sampler package
// consumes it through the engine boundary.
package model
