package handler

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/middleware"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
	"github.com/poolfit/poolfit/internal/validator"
)

// DatasetService defines the dataset operations the handler depends on
type DatasetService interface {
	Register(ctx context.Context, input *domain.DatasetInput) (*domain.Dataset, error)
	ImportCSV(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	List(ctx context.Context, filter *domain.DatasetFilter, limit, offset int) (*domain.DatasetList, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DatasetsHandler handles dataset endpoints
type DatasetsHandler struct {
	datasetService DatasetService
	logger         *zap.Logger
}

// NewDatasetsHandler creates a new datasets handler
func NewDatasetsHandler(datasetService DatasetService, logger *zap.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasetService: datasetService,
		logger:         logger,
	}
}

// RegisterDataset handles POST /v1/datasets
func (h *DatasetsHandler) RegisterDataset(c *fiber.Ctx) error {
	var input domain.DatasetInput
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

	dataset, err := h.datasetService.Register(c.Context(), &input)
	if err != nil {
		if apperrors.GetAppError(err) == nil {
			h.logger.Error("failed to register dataset", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to register dataset")
	}

	middleware.RecordDatasetRegistered(dataset.DroppedCount)

	return c.Status(fiber.StatusCreated).JSON(dataset)
}

// ImportCSV handles POST /v1/datasets/import/csv. The CSV file arrives
// as a multipart upload; the dataset name comes from a form value.
func (h *DatasetsHandler) ImportCSV(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Dataset name required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "CSV file required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	dataset, err := h.datasetService.ImportCSV(c.Context(), name, file)
	if err != nil {
		if apperrors.GetAppError(err) == nil {
			h.logger.Error("failed to import CSV", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to import CSV")
	}

	middleware.RecordDatasetRegistered(dataset.DroppedCount)

	return c.Status(fiber.StatusCreated).JSON(dataset)
}

// ListDatasets handles GET /v1/datasets
func (h *DatasetsHandler) ListDatasets(c *fiber.Ctx) error {
	var filter *domain.DatasetFilter
	if name := c.Query("name"); name != "" {
		filter = &domain.DatasetFilter{Name: &name}
	}

	p := ParsePagination(c, 100)

	list, err := h.datasetService.List(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		h.logger.Error("failed to list datasets", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal Server Error",
			"message": "Failed to list datasets",
		})
	}

	return c.JSON(list)
}

// GetDataset handles GET /v1/datasets/:datasetId
func (h *DatasetsHandler) GetDataset(c *fiber.Ctx) error {
	datasetID, err := uuid.Parse(c.Params("datasetId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid dataset ID",
		})
	}

	dataset, err := h.datasetService.Get(c.Context(), datasetID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("failed to get dataset", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to get dataset")
	}

	return c.JSON(dataset)
}

// DeleteDataset handles DELETE /v1/datasets/:datasetId
func (h *DatasetsHandler) DeleteDataset(c *fiber.Ctx) error {
	datasetID, err := uuid.Parse(c.Params("datasetId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Bad Request",
			"message": "Invalid dataset ID",
		})
	}

	if err := h.datasetService.Delete(c.Context(), datasetID); err != nil {
		if !apperrors.IsNotFound(err) {
			h.logger.Error("failed to delete dataset", zap.Error(err))
		}
		return respondAppError(c, err, "Failed to delete dataset")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
