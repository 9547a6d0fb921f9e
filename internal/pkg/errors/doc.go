// Package errors provides application error types for poolfit.
//
// This package defines:
//   - AppError type with error classification
//   - Error constructors for common error types
//   - Error type checking helpers
//   - HTTP status code mapping
//
// # Error Types
//
//   - NotFound: Resource does not exist (404)
//   - Validation: Invalid input data (400)
//   - Data: malformed records or non-positive price/area that make the
//     log transform undefined (422)
//   - ModelSpec: a builder was asked to fit a group with zero records (422)
//   - Sampler: an opaque inference engine failure (500)
//   - Internal: Unexpected server error (500)
//
// # Usage
//
// Create errors using constructor functions:
//
//	return apperrors.NotFound("dataset")
//	return apperrors.Data("price must be strictly positive")
//
// Check error types:
//
//	if apperrors.IsDataError(err) {
//	    // Handle bad input data
//	}
//
// # Error Wrapping
//
// Errors support wrapping with fmt.Errorf:
//
//	return fmt.Errorf("preparation failed: %w", apperrors.Data("missing column"))
package errors
