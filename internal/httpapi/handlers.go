package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alphaduel/alphaduel-backend/internal/leaderboard"
	"github.com/alphaduel/alphaduel-backend/internal/questions"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 10
const maxLeaderboardLimit = 100

// RandomQuestionSet hands out one random set from the pool. Each client
// fetches its own set at game start.
func RandomQuestionSet(pool *questions.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pool.Pick())
	}
}

func RecentScores(scores *leaderboard.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLeaderboardLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxLeaderboardLimit)
		}

		entries, err := scores.Recent(r.Context(), limit)
		if err != nil {
			log.Error("leaderboard query failed", zap.Error(err))
			http.Error(w, "failed to fetch leaderboard", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
