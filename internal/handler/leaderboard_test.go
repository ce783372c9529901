package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurguedes375/agar.io/internal/store"
)

type mockScores struct {
	records []store.ScoreRecord
	err     error
	limit   int
}

func (m *mockScores) TopScores(_ context.Context, limit int) ([]store.ScoreRecord, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func TestLeaderboard(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []store.ScoreRecord{
		{ID: "a", PlayerID: "p1", Name: "big", Score: 90, RecordedAt: at},
		{ID: "b", PlayerID: "p2", Name: "small", Score: 20, RecordedAt: at},
	}

	tests := []struct {
		name      string
		method    string
		query     string
		scores    ScoreLister
		wantCode  int
		wantLimit int
		wantLen   int
	}{
		{"default limit", http.MethodGet, "", &mockScores{records: records}, http.StatusOK, 10, 2},
		{"explicit limit", http.MethodGet, "?limit=1", &mockScores{records: records}, http.StatusOK, 1, 1},
		{"limit capped", http.MethodGet, "?limit=5000", &mockScores{records: records}, http.StatusOK, 100, 2},
		{"empty store", http.MethodGet, "", &mockScores{}, http.StatusOK, 10, 0},
		{"bad limit", http.MethodGet, "?limit=x", &mockScores{}, http.StatusBadRequest, 0, 0},
		{"zero limit", http.MethodGet, "?limit=0", &mockScores{}, http.StatusBadRequest, 0, 0},
		{"store error", http.MethodGet, "", &mockScores{err: errors.New("down")}, http.StatusInternalServerError, 10, 0},
		{"wrong method", http.MethodPost, "", &mockScores{}, http.StatusMethodNotAllowed, 0, 0},
		{"disabled", http.MethodGet, "", nil, http.StatusServiceUnavailable, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/leaderboard"+tt.query, nil)
			rec := httptest.NewRecorder()

			Leaderboard(tt.scores).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if m, ok := tt.scores.(*mockScores); ok {
				assert.Equal(t, tt.wantLimit, m.limit)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var got []store.ScoreRecord
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, "big", got[0].Name)
			}
		})
	}
}
