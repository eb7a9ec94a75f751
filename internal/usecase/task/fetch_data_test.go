package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geodisasters/database"
	"geodisasters/internal/api/geodisasters"
	"geodisasters/internal/api/georapid"
)

type querierMock struct {
	mock.Mock
}

func (m *querierMock) Query(ctx context.Context, client geodisasters.ServiceClient, req geodisasters.QueryRequest) (geodisasters.QueryResult, error) {
	result := m.Called(ctx, client, req)

	queryResult, _ := result.Get(0).(geodisasters.QueryResult)

	return queryResult, result.Error(1)
}

func newTestUseCase(querier Querier, openDB func() (database.DB, error)) *FetchDataTaskUseCase {
	uc := NewFetchDataTaskUseCase(querier, georapid.NewRapidAPIClient("secret"), openDB)
	uc.now = func() time.Time { return time.Date(2024, 1, 10, 5, 0, 0, 0, time.UTC) }

	return uc
}

func failOpenDB() (database.DB, error) {
	return nil, errors.New("no database")
}

func TestFetchData_WritesFile(t *testing.T) {
	result := geodisasters.QueryResult{
		"type":     "FeatureCollection",
		"features": []interface{}{map[string]interface{}{"type": "Feature"}},
	}
	expectedReq := geodisasters.NewQueryRequest(
		geodisasters.Date{Year: 2023, Month: 6, Day: 1},
		geodisasters.Date{Year: 2023, Month: 6, Day: 2},
	)

	querier := new(querierMock)
	querier.On("Query", mock.Anything, mock.Anything, expectedReq).Return(result, nil)

	path := filepath.Join(t.TempDir(), "locations.json")
	uc := newTestUseCase(querier, failOpenDB)

	resp, err := uc.FetchData(context.Background(), &FetchDataRequest{
		Source:    SourceGeoDisasters,
		DestURL:   "file://" + path,
		StartDate: lo.ToPtr(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   lo.ToPtr(time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)),
	})

	require.Nil(t, err)
	assert.Equal(t, &FetchDataResponse{Features: 1}, resp)
	querier.AssertExpectations(t)

	content, err := os.ReadFile(path)
	require.Nil(t, err)

	var written geodisasters.QueryResult
	require.Nil(t, json.Unmarshal(content, &written))
	assert.Equal(t, result, written)
}

func TestFetchData_DefaultsRangeAndPassesFormat(t *testing.T) {
	expectedReq := geodisasters.QueryRequest{
		From:   geodisasters.FloorDate,
		To:     geodisasters.Date{Year: 2024, Month: 1, Day: 9},
		Format: georapid.Esri,
	}

	querier := new(querierMock)
	querier.On("Query", mock.Anything, mock.Anything, expectedReq).Return(geodisasters.QueryResult{}, nil)

	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{
		Source:  SourceGeoDisasters,
		Format:  georapid.Esri,
		DestURL: "file://" + filepath.Join(t.TempDir(), "locations.json"),
	})

	assert.Nil(t, err)
	querier.AssertExpectations(t)
}

func TestFetchData_UnsupportedSource(t *testing.T) {
	querier := new(querierMock)
	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{Source: "usgs", DestURL: "file://out.json"})

	assert.EqualError(t, err, "unsupported source: usgs")
	querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchData_UnsupportedDestination(t *testing.T) {
	querier := new(querierMock)
	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{Source: SourceGeoDisasters, DestURL: "s3://bucket/out.json"})

	assert.EqualError(t, err, "unsupported destination: s3://bucket/out.json")
	querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchData_QueryErrorIsReturned(t *testing.T) {
	queryErr := &geodisasters.HTTPStatusError{StatusCode: 500, Status: "500 Internal Server Error"}

	querier := new(querierMock)
	querier.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, queryErr)

	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{
		Source:  SourceGeoDisasters,
		DestURL: "file://" + filepath.Join(t.TempDir(), "locations.json"),
	})

	var statusErr *geodisasters.HTTPStatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestFetchData_DatabaseUnavailable(t *testing.T) {
	querier := new(querierMock)
	querier.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(geodisasters.QueryResult{}, nil)

	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{
		Source:  SourceGeoDisasters,
		DestURL: "db://",
	})

	assert.ErrorContains(t, err, "failed to connect to database")
}

func TestFetchData_FileCreateFailure(t *testing.T) {
	querier := new(querierMock)
	querier.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(geodisasters.QueryResult{}, nil)

	uc := newTestUseCase(querier, failOpenDB)

	_, err := uc.FetchData(context.Background(), &FetchDataRequest{
		Source:  SourceGeoDisasters,
		DestURL: "file://" + filepath.Join(t.TempDir(), "missing", "locations.json"),
	})

	assert.ErrorContains(t, err, "failed to create file")
}

func TestWriteFile_ClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")

	require.Nil(t, writeFile(path, geodisasters.QueryResult{"features": []interface{}{}}))

	content, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.JSONEq(t, `{"features": []}`, string(content))
}
