// Package repository contains data access implementations for poolfit.
//
// Repositories provide persistence operations for domain entities,
// abstracting the underlying data store.
//
// # Architecture
//
// Repository interfaces are defined at the service layer (consumer-defined
// interfaces) following Go's dependency inversion best practices.
// This package contains the concrete implementations.
//
// # Data Stores
//
//   - PostgreSQL: datasets and fit runs, with prepared records and
//     posterior summaries stored as JSONB
//   - Redis: rate limiting and the asynq task queue
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use.
// Connection pools are managed at the database layer.
package repository
