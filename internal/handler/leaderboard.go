package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arthurguedes375/agar.io/internal/store"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ScoreLister reads the best recorded scores.
type ScoreLister interface {
	TopScores(ctx context.Context, limit int) ([]store.ScoreRecord, error)
}

// Leaderboard serves the best scores as JSON. ?limit caps the number of
// records. A nil lister answers 503.
func Leaderboard(scores ScoreLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if scores == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "score store disabled")
			return
		}

		limit := defaultLeaderboardLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeJSONError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = min(n, maxLeaderboardLimit)
		}

		records, err := scores.TopScores(r.Context(), limit)
		if err != nil {
			slog.Error("failed to load leaderboard", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "failed to load leaderboard")
			return
		}
		if records == nil {
			records = []store.ScoreRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(records)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
