package httpapi

import (
	"net/http"

	"github.com/alphaduel/alphaduel-backend/internal/hub"
	"github.com/alphaduel/alphaduel-backend/internal/leaderboard"
	"github.com/alphaduel/alphaduel-backend/internal/questions"
	"github.com/alphaduel/alphaduel-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, pool *questions.Pool, scores *leaderboard.Store, staticDir string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	r.Get("/api/questions", RandomQuestionSet(pool))
	r.Get("/api/leaderboard", RecentScores(scores, log))
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}
