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

// FitRunRepository handles fit run data operations in PostgreSQL.
// Results are stored as a JSONB document; a run's summaries and
// comparison are always read together.
type FitRunRepository struct {
	db *database.PostgresDB
}

// NewFitRunRepository creates a new fit run repository
func NewFitRunRepository(db *database.PostgresDB) *FitRunRepository {
	return &FitRunRepository{db: db}
}

// Create creates a new fit run
func (r *FitRunRepository) Create(ctx context.Context, run *domain.FitRun) error {
	results, err := marshalResults(run.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO fit_runs (id, dataset_id, status, draws, warmup, seed, error, results,
			created_at, updated_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		run.ID,
		run.DatasetID,
		run.Status,
		run.Draws,
		run.Warmup,
		run.Seed,
		run.Error,
		results,
		run.CreatedAt,
		run.UpdatedAt,
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fit run: %w", err)
	}

	return nil
}

// GetByID retrieves a fit run by ID
func (r *FitRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FitRun, error) {
	query := `
		SELECT id, dataset_id, status, draws, warmup, seed, error, results,
			created_at, updated_at, started_at, completed_at
		FROM fit_runs
		WHERE id = $1
	`

	var run domain.FitRun
	var results []byte

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.DatasetID,
		&run.Status,
		&run.Draws,
		&run.Warmup,
		&run.Seed,
		&run.Error,
		&results,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.StartedAt,
		&run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("fit run")
		}
		return nil, fmt.Errorf("failed to get fit run: %w", err)
	}

	if len(results) > 0 {
		if err := json.Unmarshal(results, &run.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fit results: %w", err)
		}
	}

	return &run, nil
}

// Update updates a fit run
func (r *FitRunRepository) Update(ctx context.Context, run *domain.FitRun) error {
	results, err := marshalResults(run.Results)
	if err != nil {
		return err
	}

	query := `
		UPDATE fit_runs
		SET status = $2, error = $3, results = $4, updated_at = $5,
			started_at = $6, completed_at = $7
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.Error,
		results,
		run.UpdatedAt,
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update fit run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("fit run")
	}

	return nil
}

// List retrieves fit runs with pagination. Results documents are not
// loaded for listings.
func (r *FitRunRepository) List(ctx context.Context, filter *domain.FitRunFilter, limit, offset int) (*domain.FitRunList, error) {
	where := ""
	var args []any
	if filter != nil {
		var clauses []string
		if filter.DatasetID != nil {
			args = append(args, *filter.DatasetID)
			clauses = append(clauses, fmt.Sprintf("dataset_id = $%d", len(args)))
		}
		if filter.Status != nil {
			args = append(args, *filter.Status)
			clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
		}
		for i, clause := range clauses {
			if i == 0 {
				where = " WHERE " + clause
			} else {
				where += " AND " + clause
			}
		}
	}

	var totalCount int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fit_runs`+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count fit runs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, dataset_id, status, draws, warmup, seed, error,
			created_at, updated_at, started_at, completed_at
		FROM fit_runs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fit runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.FitRun, 0)
	for rows.Next() {
		var run domain.FitRun
		err := rows.Scan(
			&run.ID,
			&run.DatasetID,
			&run.Status,
			&run.Draws,
			&run.Warmup,
			&run.Seed,
			&run.Error,
			&run.CreatedAt,
			&run.UpdatedAt,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fit run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fit runs: %w", err)
	}

	return &domain.FitRunList{
		FitRuns:    runs,
		TotalCount: totalCount,
		HasMore:    int64(offset+len(runs)) < totalCount,
	}, nil
}

func marshalResults(results *domain.FitResults) ([]byte, error) {
	if results == nil {
		return nil, nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fit results: %w", err)
	}
	return data, nil
}
