package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

func makeFitRun(datasetID uuid.UUID) *domain.FitRun {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.FitRun{
		ID:        uuid.New(),
		DatasetID: datasetID,
		Status:    domain.FitRunStatusPending,
		Draws:     2000,
		Warmup:    1000,
		Seed:      42,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFitRunRepository_CreateAndGet(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	defer cleanupDatasets(t, db, "it-fitrun-create")

	ctx := context.Background()
	ds := makeDataset(t, "it-fitrun-create")
	require.NoError(t, NewDatasetRepository(db).Create(ctx, ds))

	repo := NewFitRunRepository(db)
	run := makeFitRun(ds.ID)
	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.DatasetID, got.DatasetID)
	assert.Equal(t, domain.FitRunStatusPending, got.Status)
	assert.Equal(t, 2000, got.Draws)
	assert.Equal(t, int64(42), got.Seed)
	assert.Nil(t, got.Results)
}

func TestFitRunRepository_UpdateWithResults(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	defer cleanupDatasets(t, db, "it-fitrun-update")

	ctx := context.Background()
	ds := makeDataset(t, "it-fitrun-update")
	require.NoError(t, NewDatasetRepository(db).Create(ctx, ds))

	repo := NewFitRunRepository(db)
	run := makeFitRun(ds.ID)
	require.NoError(t, repo.Create(ctx, run))

	now := time.Now().UTC().Truncate(time.Microsecond)
	run.Status = domain.FitRunStatusCompleted
	run.StartedAt = &now
	run.CompletedAt = &now
	run.UpdatedAt = now
	run.Results = &domain.FitResults{
		Pooled: []domain.ParamSummary{
			{Name: "slope", Mean: 0.92, StdDev: 0.05, Q5: 0.84, Median: 0.92, Q95: 1.0},
		},
		Unpooled: []domain.GroupFit{
			{Group: "OldTown", Summaries: []domain.ParamSummary{{Name: "slope", Mean: 0.88}}},
		},
		Comparison: &domain.ShrinkageReport{
			PopulationSlope: 0.9,
			Pairs: []domain.ShrinkagePair{
				{Group: "OldTown", RecordCount: 2, DeltaSlope: 0.04, Magnitude: 0.05},
			},
		},
	}
	require.NoError(t, repo.Update(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FitRunStatusCompleted, got.Status)
	require.NotNil(t, got.Results)
	require.Len(t, got.Results.Pooled, 1)
	assert.InDelta(t, 0.92, got.Results.Pooled[0].Mean, 1e-12)
	require.NotNil(t, got.Results.Comparison)
	assert.InDelta(t, 0.9, got.Results.Comparison.PopulationSlope, 1e-12)
	require.NotNil(t, got.CompletedAt)
}

func TestFitRunRepository_UpdateMissing(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	defer cleanupDatasets(t, db, "it-fitrun-missing")

	ctx := context.Background()
	ds := makeDataset(t, "it-fitrun-missing")
	require.NoError(t, NewDatasetRepository(db).Create(ctx, ds))

	repo := NewFitRunRepository(db)
	run := makeFitRun(ds.ID)

	err := repo.Update(ctx, run)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFitRunRepository_List(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	defer cleanupDatasets(t, db, "it-fitrun-list")

	ctx := context.Background()
	ds := makeDataset(t, "it-fitrun-list")
	require.NoError(t, NewDatasetRepository(db).Create(ctx, ds))

	repo := NewFitRunRepository(db)
	first := makeFitRun(ds.ID)
	require.NoError(t, repo.Create(ctx, first))
	second := makeFitRun(ds.ID)
	second.Status = domain.FitRunStatusCompleted
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx, &domain.FitRunFilter{DatasetID: &ds.ID}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Len(t, list.FitRuns, 2)

	status := domain.FitRunStatusCompleted
	list, err = repo.List(ctx, &domain.FitRunFilter{DatasetID: &ds.ID, Status: &status}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	require.Len(t, list.FitRuns, 1)
	assert.Equal(t, second.ID, list.FitRuns[0].ID)
}
