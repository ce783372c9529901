package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arthurguedes375/agar.io/internal/game"
)

// ScoreRecord is a player's final score in one session.
type ScoreRecord struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ScoresFromGame builds one record per player of g, highest score first.
func ScoresFromGame(g game.Game, at time.Time) []ScoreRecord {
	if g.Map == nil {
		return nil
	}
	records := make([]ScoreRecord, 0, len(g.Map.Players))
	for _, p := range g.Map.Players {
		records = append(records, ScoreRecord{
			ID:         uuid.New().String(),
			PlayerID:   p.ID,
			Name:       p.Name,
			Score:      p.Score(),
			RecordedAt: at,
		})
	}
	sortByScore(records)
	return records
}

func sortByScore(records []ScoreRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].PlayerID < records[j].PlayerID
	})
}

// ScoreStore defines the interface for persistent score storage.
type ScoreStore interface {
	// SaveScores inserts the records of a finished session.
	SaveScores(ctx context.Context, records []ScoreRecord) error
	// TopScores returns the best scores ever recorded, highest first.
	TopScores(ctx context.Context, limit int) ([]ScoreRecord, error)
	// Close releases database resources.
	Close() error
}
