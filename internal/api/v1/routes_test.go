package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/NikolayVerchenko/wb-analytics-sub001/internal/api/v1"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/service/mocks"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/status"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/coordinator"
)

var testNow = time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListPeriods(t *testing.T) {
	t.Parallel()

	entries := []*status.Entry{
		status.NewPending("2024-03-05", period.KindDaily, testNow),
		status.NewPending("2024-03-06", period.KindDaily, testNow),
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(*mocks.MockSyncService)
		expectedStatus int
		expectedCount  int
		check          func(t *testing.T, opts *service.ListPeriodsOptions)
	}{
		{
			name:  "no filters",
			query: "",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().ListPeriods(gomock.Any(), gomock.Any()).Return(entries, nil)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "filters are passed through",
			query:          "?kind=daily&status=pending&from=2024-03-01&to=2024-03-31",
			expectedStatus: http.StatusOK,
			expectedCount:  2,
			check: func(t *testing.T, opts *service.ListPeriodsOptions) {
				t.Helper()
				assert.Equal(t, period.KindDaily, opts.Kind)
				assert.Equal(t, status.StatusPending, opts.Status)
				assert.Equal(t, "2024-03-01", opts.From)
				assert.Equal(t, "2024-03-31", opts.To)
			},
		},
		{
			name:  "invalid filter",
			query: "?kind=monthly",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().ListPeriods(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: unknown kind", service.ErrInvalidFilter))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "store failure",
			query: "",
			setupMock: func(m *mocks.MockSyncService) {
				m.EXPECT().ListPeriods(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockSyncService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(mockSvc)
			} else {
				mockSvc.EXPECT().ListPeriods(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, opts ...service.Option) ([]*status.Entry, error) {
						o, err := service.NewListPeriodsOptions(opts...)
						require.NoError(t, err)
						tt.check(t, o)
						return entries, nil
					})
			}

			rr := do(t, v1.Router(mockSvc), http.MethodGet, "/periods"+tt.query)
			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response v1.ListPeriodsResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCount, response.Count)
			assert.Len(t, response.Periods, tt.expectedCount)
		})
	}
}

func TestGetPeriod(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		entry := status.NewPending("2024-W09", period.KindWeekly, testNow)
		entry.MarkSuccess(testNow)
		entry.IsFinal = true

		mockSvc := mocks.NewMockSyncService(ctrl)
		mockSvc.EXPECT().GetPeriod(gomock.Any(), period.KindWeekly, "2024-W09").Return(entry, nil)

		rr := do(t, v1.Router(mockSvc), http.MethodGet, "/periods/weekly/2024-W09")
		require.Equal(t, http.StatusOK, rr.Code)

		var got status.Entry
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "2024-W09", got.PeriodID)
		assert.Equal(t, status.StatusSuccess, got.Status)
		assert.True(t, got.IsFinal)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		mockSvc := mocks.NewMockSyncService(ctrl)
		mockSvc.EXPECT().GetPeriod(gomock.Any(), period.KindDaily, "2024-03-01").
			Return(nil, service.ErrPeriodNotFound)

		rr := do(t, v1.Router(mockSvc), http.MethodGet, "/periods/daily/2024-03-01")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("whitespace in identifier", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		rr := do(t, v1.Router(mocks.NewMockSyncService(ctrl)), http.MethodGet, "/periods/daily/2024%2003%2001")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("returns the pass summary", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		mockSvc := mocks.NewMockSyncService(ctrl)
		mockSvc.EXPECT().Refresh(gomock.Any()).Return(coordinator.Summary{Tasks: 3, Succeeded: 2, Empty: 1}, nil)

		rr := do(t, v1.Router(mockSvc), http.MethodPost, "/refresh")
		require.Equal(t, http.StatusOK, rr.Code)

		var summary coordinator.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, coordinator.Summary{Tasks: 3, Succeeded: 2, Empty: 1}, summary)
	})

	t.Run("unavailable without a coordinator", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		mockSvc := mocks.NewMockSyncService(ctrl)
		mockSvc.EXPECT().Refresh(gomock.Any()).Return(coordinator.Summary{}, service.ErrRefreshUnavailable)

		rr := do(t, v1.Router(mockSvc), http.MethodPost, "/refresh")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		rr := do(t, v1.Router(mocks.NewMockSyncService(ctrl)), http.MethodGet, "/refresh")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestSyncStatus(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	started := testNow.Add(-time.Minute)
	mockSvc := mocks.NewMockSyncService(ctrl)
	mockSvc.EXPECT().SyncStatus(gomock.Any()).Return(coordinator.BackgroundStatus{
		Running:   true,
		RunID:     "3f1c2a9e-1111-4c59-9b7e-0a1b2c3d4e5f",
		StartedAt: &started,
	}, nil)

	rr := do(t, v1.Router(mockSvc), http.MethodGet, "/sync")
	require.Equal(t, http.StatusOK, rr.Code)

	var got coordinator.BackgroundStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Running)
	assert.Equal(t, "3f1c2a9e-1111-4c59-9b7e-0a1b2c3d4e5f", got.RunID)
	require.NotNil(t, got.StartedAt)
	assert.True(t, started.Equal(*got.StartedAt))
	assert.Nil(t, got.LastRun)
}
