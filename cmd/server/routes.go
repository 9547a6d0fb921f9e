package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	// Health check routes
	app.Get("/health", deps.HealthHandler.Health)
	app.Get("/healthz", deps.HealthHandler.Health)
	app.Get("/livez", deps.HealthHandler.Live)
	app.Get("/readyz", deps.HealthHandler.Ready)

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	v1 := app.Group("/v1")
	if deps.RateLimitMiddleware != nil {
		v1.Use(deps.RateLimitMiddleware.Handler())
	}

	// Datasets
	v1.Post("/datasets", deps.DatasetsHandler.RegisterDataset)
	v1.Post("/datasets/import/csv", deps.DatasetsHandler.ImportCSV)
	v1.Get("/datasets", deps.DatasetsHandler.ListDatasets)
	v1.Get("/datasets/:datasetId", deps.DatasetsHandler.GetDataset)
	v1.Delete("/datasets/:datasetId", deps.DatasetsHandler.DeleteDataset)

	// Fit runs
	v1.Post("/fits", deps.FitsHandler.CreateFitRun)
	v1.Get("/fits", deps.FitsHandler.ListFitRuns)
	v1.Get("/fits/:fitRunId", deps.FitsHandler.GetFitRun)
	v1.Get("/fits/:fitRunId/comparison", deps.FitsHandler.GetComparison)
}
