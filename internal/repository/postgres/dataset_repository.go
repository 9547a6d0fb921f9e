package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/pkg/database"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// DatasetRepository handles dataset data operations in PostgreSQL.
// Prepared records and the group table are stored as JSONB documents:
// a dataset is written once at registration and always read whole.
type DatasetRepository struct {
	db *database.PostgresDB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *database.PostgresDB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Create creates a new dataset
func (r *DatasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	records, err := json.Marshal(dataset.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	groups, err := json.Marshal(dataset.Groups)
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}

	query := `
		INSERT INTO datasets (id, name, records, groups, dropped_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		dataset.ID,
		dataset.Name,
		records,
		groups,
		dataset.DroppedCount,
		dataset.CreatedAt,
		dataset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	return nil
}

// GetByID retrieves a dataset by ID
func (r *DatasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	query := `
		SELECT id, name, records, groups, dropped_count, created_at, updated_at
		FROM datasets
		WHERE id = $1
	`

	return r.scanDataset(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a dataset by name
func (r *DatasetRepository) GetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	query := `
		SELECT id, name, records, groups, dropped_count, created_at, updated_at
		FROM datasets
		WHERE name = $1
	`

	return r.scanDataset(r.db.Pool.QueryRow(ctx, query, name))
}

func (r *DatasetRepository) scanDataset(row pgx.Row) (*domain.Dataset, error) {
	var dataset domain.Dataset
	var records, groups []byte

	err := row.Scan(
		&dataset.ID,
		&dataset.Name,
		&records,
		&groups,
		&dataset.DroppedCount,
		&dataset.CreatedAt,
		&dataset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("dataset")
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	if err := json.Unmarshal(records, &dataset.Records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if err := json.Unmarshal(groups, &dataset.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}

	return &dataset, nil
}

// Delete deletes a dataset
func (r *DatasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("dataset")
	}

	return nil
}

// List retrieves datasets with pagination. Records are not loaded for
// listings; only the group table and counts.
func (r *DatasetRepository) List(ctx context.Context, filter *domain.DatasetFilter, limit, offset int) (*domain.DatasetList, error) {
	query := `
		SELECT id, name, groups, dropped_count, jsonb_array_length(records), created_at, updated_at
		FROM datasets
	`
	countQuery := `SELECT COUNT(*) FROM datasets`

	var args []any
	if filter != nil && filter.Name != nil {
		query += ` WHERE name = $1`
		countQuery += ` WHERE name = $1`
		args = append(args, *filter.Name)
	}

	var totalCount int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count datasets: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]domain.Dataset, 0)
	for rows.Next() {
		var dataset domain.Dataset
		var groups []byte

		err := rows.Scan(
			&dataset.ID,
			&dataset.Name,
			&groups,
			&dataset.DroppedCount,
			&dataset.RecordCount,
			&dataset.CreatedAt,
			&dataset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		if err := json.Unmarshal(groups, &dataset.Groups); err != nil {
			return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
		}

		datasets = append(datasets, dataset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}

	return &domain.DatasetList{
		Datasets:   datasets,
		TotalCount: totalCount,
		HasMore:    int64(offset+len(datasets)) < totalCount,
	}, nil
}

// NameExists checks whether a dataset with the given name exists
func (r *DatasetRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM datasets WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check dataset name: %w", err)
	}

	return exists, nil
}

// GetFitCount returns the number of fit runs recorded for a dataset
func (r *DatasetRepository) GetFitCount(ctx context.Context, datasetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fit_runs WHERE dataset_id = $1`, datasetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fit runs: %w", err)
	}

	return count, nil
}
