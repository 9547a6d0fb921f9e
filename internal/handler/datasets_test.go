package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// MockDatasetService mocks the dataset service for testing
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Register(ctx context.Context, input *domain.DatasetInput) (*domain.Dataset, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) ImportCSV(ctx context.Context, name string, r io.Reader) (*domain.Dataset, error) {
	args := m.Called(ctx, name, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) Get(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) List(ctx context.Context, filter *domain.DatasetFilter, limit, offset int) (*domain.DatasetList, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DatasetList), args.Error(1)
}

func (m *MockDatasetService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupDatasetTestApp(mockSvc *MockDatasetService) *fiber.App {
	app := fiber.New()
	h := NewDatasetsHandler(mockSvc, zap.NewNop())

	app.Post("/v1/datasets", h.RegisterDataset)
	app.Post("/v1/datasets/import/csv", h.ImportCSV)
	app.Get("/v1/datasets", h.ListDatasets)
	app.Get("/v1/datasets/:datasetId", h.GetDataset)
	app.Delete("/v1/datasets/:datasetId", h.DeleteDataset)

	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDatasetsHandler_RegisterDataset(t *testing.T) {
	t.Run("creates a dataset", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		ds := &domain.Dataset{ID: uuid.New(), Name: "ames", Groups: []string{"OldTown"}}
		mockSvc.On("Register", mock.Anything, mock.AnythingOfType("*domain.DatasetInput")).Return(ds, nil)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/datasets", domain.DatasetInput{
			Name: "ames",
			Records: []domain.RecordInput{
				{RowID: "1", Price: 200000, Area: 8000, GroupLabel: "OldTown"},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got domain.Dataset
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, ds.ID, got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("passes non-positive records through to the drop policy", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		ds := &domain.Dataset{ID: uuid.New(), Name: "ames", Groups: []string{"OldTown"}, DroppedCount: 1}
		mockSvc.On("Register", mock.Anything, mock.MatchedBy(func(input *domain.DatasetInput) bool {
			return len(input.Records) == 2 && input.Records[1].Price == -1
		})).Return(ds, nil)

		// Range checking is the preparer's job, not the handler's: a
		// record with a non-positive price must reach the service so
		// the configured policy can drop or reject it.
		resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/datasets", domain.DatasetInput{
			Name: "ames",
			Records: []domain.RecordInput{
				{RowID: "1", Price: 200000, Area: 8000, GroupLabel: "OldTown"},
				{RowID: "2", Price: -1, Area: 8000, GroupLabel: "OldTown"},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got domain.Dataset
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 1, got.DroppedCount)
		mockSvc.AssertExpectations(t)
	})

	t.Run("rejects a body failing validation", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		// Missing name and records.
		resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/datasets", domain.DatasetInput{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Register")
	})

	t.Run("maps data errors to 422", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperrors.Data("all records were dropped during preparation"))

		resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/datasets", domain.DatasetInput{
			Name: "bad",
			Records: []domain.RecordInput{
				{RowID: "1", Price: 1, Area: 1, GroupLabel: "A"},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("maps name conflicts to 409", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperrors.Conflict("dataset name already exists"))

		resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/datasets", domain.DatasetInput{
			Name: "ames",
			Records: []domain.RecordInput{
				{RowID: "1", Price: 1, Area: 1, GroupLabel: "A"},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestDatasetsHandler_ImportCSV(t *testing.T) {
	csvUpload := func(name, content string) *http.Request {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if name != "" {
			_ = w.WriteField("name", name)
		}
		if content != "" {
			fw, _ := w.CreateFormFile("file", "housing.csv")
			_, _ = fw.Write([]byte(content))
		}
		_ = w.Close()

		req := httptest.NewRequest(http.MethodPost, "/v1/datasets/import/csv", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req
	}

	t.Run("imports an uploaded file", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		ds := &domain.Dataset{ID: uuid.New(), Name: "ames"}
		mockSvc.On("ImportCSV", mock.Anything, "ames", mock.Anything).Return(ds, nil)

		resp, err := app.Test(csvUpload("ames", "Id,SalePrice,LotArea,Neighborhood\n1,200000,8000,OldTown\n"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("requires a name", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		resp, err := app.Test(csvUpload("", "Id,SalePrice,LotArea,Neighborhood\n"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "ImportCSV")
	})

	t.Run("requires a file", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		resp, err := app.Test(csvUpload("ames", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "ImportCSV")
	})

	t.Run("maps malformed CSV to 422", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		mockSvc.On("ImportCSV", mock.Anything, "ames", mock.Anything).
			Return(nil, apperrors.Data("missing required columns"))

		resp, err := app.Test(csvUpload("ames", "not,a,housing,file\n"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestDatasetsHandler_GetDataset(t *testing.T) {
	t.Run("returns the dataset", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		ds := &domain.Dataset{ID: uuid.New(), Name: "ames"}
		mockSvc.On("Get", mock.Anything, ds.ID).Return(ds, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/datasets/"+ds.ID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects a malformed ID", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/datasets/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps missing datasets to 404", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		id := uuid.New()
		mockSvc.On("Get", mock.Anything, id).Return(nil, apperrors.NotFound("dataset"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/datasets/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDatasetsHandler_ListDatasets(t *testing.T) {
	t.Run("passes filter and pagination through", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f *domain.DatasetFilter) bool {
			return f != nil && f.Name != nil && *f.Name == "ames"
		}), 10, 5).Return(&domain.DatasetList{}, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/datasets?name=ames&limit=10&offset=5", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("caps the limit", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		mockSvc.On("List", mock.Anything, (*domain.DatasetFilter)(nil), 100, 0).
			Return(&domain.DatasetList{}, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/datasets?limit=5000", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDatasetsHandler_DeleteDataset(t *testing.T) {
	t.Run("deletes and returns no content", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		id := uuid.New()
		mockSvc.On("Delete", mock.Anything, id).Return(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/v1/datasets/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("maps missing datasets to 404", func(t *testing.T) {
		mockSvc := new(MockDatasetService)
		app := setupDatasetTestApp(mockSvc)

		id := uuid.New()
		mockSvc.On("Delete", mock.Anything, id).Return(apperrors.NotFound("dataset"))

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/v1/datasets/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
