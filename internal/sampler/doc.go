// Package sampler implements the inference boundary of poolfit. The
// Engine interface accepts an abstract model spec and returns a
// posterior trace; Metropolis is the reference implementation, an
// adaptive componentwise random-walk sampler that explores
// positive-support parameters in log space.
package sampler
