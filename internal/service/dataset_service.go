package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/poolfit/poolfit/internal/dataprep"
	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// DatasetRepository defines dataset repository operations
type DatasetRepository interface {
	Create(ctx context.Context, dataset *domain.Dataset) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *domain.DatasetFilter, limit, offset int) (*domain.DatasetList, error)
	NameExists(ctx context.Context, name string) (bool, error)
	GetFitCount(ctx context.Context, datasetID uuid.UUID) (int64, error)
}

// DatasetService handles dataset registration and retrieval. All
// preparation (validation, log transforms, group coding) happens here,
// once, at registration time; everything downstream reads prepared
// records.
type DatasetService struct {
	datasetRepo DatasetRepository
	preparer    *dataprep.Preparer
}

// NewDatasetService creates a new dataset service
func NewDatasetService(datasetRepo DatasetRepository, preparer *dataprep.Preparer) *DatasetService {
	return &DatasetService{
		datasetRepo: datasetRepo,
		preparer:    preparer,
	}
}

// Register prepares raw records into a dataset and persists it.
func (s *DatasetService) Register(ctx context.Context, input *domain.DatasetInput) (*domain.Dataset, error) {
	exists, err := s.datasetRepo.NameExists(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("dataset name already exists")
	}

	dataset, err := s.preparer.Prepare(input.Name, input.Records)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dataset.ID = uuid.New()
	dataset.CreatedAt = now
	dataset.UpdatedAt = now

	if err := s.datasetRepo.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	return dataset, nil
}

// ImportCSV parses a CSV stream into raw records and registers them as
// a dataset.
func (s *DatasetService) ImportCSV(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	records, err := dataprep.ParseCSV(r)
	if err != nil {
		return nil, err
	}

	return s.Register(ctx, &domain.DatasetInput{
		Name:    name,
		Records: records,
	})
}

// Get retrieves a dataset by ID
func (s *DatasetService) Get(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fitCount, _ := s.datasetRepo.GetFitCount(ctx, id)
	dataset.FitCount = fitCount
	dataset.RecordCount = int64(len(dataset.Records))

	return dataset, nil
}

// List retrieves datasets with pagination
func (s *DatasetService) List(ctx context.Context, filter *domain.DatasetFilter, limit, offset int) (*domain.DatasetList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.datasetRepo.List(ctx, filter, limit, offset)
}

// Delete deletes a dataset
func (s *DatasetService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.datasetRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.datasetRepo.Delete(ctx, id)
}
