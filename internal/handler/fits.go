package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
	"github.com/poolfit/poolfit/internal/validator"
)

// FitService defines the fit run operations the handler depends on
type FitService interface {
	Create(ctx context.Context, input *domain.FitRunInput) (*domain.FitRun, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.FitRun, error)
	List(ctx context.Context, filter *domain.FitRunFilter, limit, offset int) (*domain.FitRunList, error)
	GetComparison(ctx context.Context, id uuid.UUID) (*domain.ShrinkageReport, error)
}

// FitsHandler handles fit run endpoints
type FitsHandler struct {
	fitService FitService
	logger     *zap.Logger
}

// NewFitsHandler creates a new fits handler
func NewFitsHandler(fitService FitService, logger *zap.Logger) *FitsHandler {
	return &FitsHandler{
		fitService: fitService,
		logger:     logger,
	}
}

// CreateFitRun handles POST /v1/fits. Synchronous runs return the
// completed results; async runs return 202 with the pending run.
func (h *FitsHandler) CreateFitRun(c *fiber.Ctx) error {
	var input domain.FitRunInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
	}

	if err := validator.Validate(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation Error",
			"message": err.Error(),
		})
	}

	run, err := h.fitService.Create(c.Context(), &input)
	if err != nil {
		if apperrors.GetAppError(err) == nil {
			h.logger.Error("failed to create fit run", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to create fit run")
	}

	status := fiber.StatusCreated
	if input.Async {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(run)
}

// GetFitRun handles GET /v1/fits/:fitRunId
func (h *FitsHandler) GetFitRun(c *fiber.Ctx) error {
	fitRunID, err := uuid.Parse(c.Params("fitRunId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid fit run ID",
		})
	}

	run, err := h.fitService.Get(c.Context(), fitRunID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("failed to get fit run", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to get fit run")
	}

	return c.JSON(run)
}

// ListFitRuns handles GET /v1/fits
func (h *FitsHandler) ListFitRuns(c *fiber.Ctx) error {
	filter := &domain.FitRunFilter{}

	if raw := c.Query("datasetId"); raw != "" {
		datasetID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Bad Request",
				"message": "Invalid dataset ID",
			})
		}
		filter.DatasetID = &datasetID
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.FitRunStatus(raw)
		if !status.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Bad Request",
				"message": "Invalid fit run status",
			})
		}
		filter.Status = &status
	}

	p := ParsePagination(c, 100)

	list, err := h.fitService.List(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		h.logger.Error("failed to list fit runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to list fit runs",
		})
	}

	return c.JSON(list)
}

// GetComparison handles GET /v1/fits/:fitRunId/comparison
func (h *FitsHandler) GetComparison(c *fiber.Ctx) error {
	fitRunID, err := uuid.Parse(c.Params("fitRunId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid fit run ID",
		})
	}

	report, err := h.fitService.GetComparison(c.Context(), fitRunID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("failed to get comparison", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to get comparison")
	}

	return c.JSON(report)
}
