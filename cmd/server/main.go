package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/alphaduel/alphaduel-backend/internal/config"
	"github.com/alphaduel/alphaduel-backend/internal/httpapi"
	"github.com/alphaduel/alphaduel-backend/internal/hub"
	"github.com/alphaduel/alphaduel-backend/internal/leaderboard"
	"github.com/alphaduel/alphaduel-backend/internal/questions"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pool, err := questions.Load(cfg.QuestionsPath)
	if err != nil {
		log.Fatal("failed to load question pool", zap.Error(err))
	}

	scores, err := leaderboard.Open(cfg.LeaderboardDSN)
	if err != nil {
		log.Fatal("failed to open leaderboard store", zap.Error(err))
	}
	defer scores.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := hub.NewHub(ctx, cfg.InitialTime, scores, log)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, pool, scores, cfg.StaticDir, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		log.Info("shutting down")
		h.Inbox() <- hub.ShutdownHub{}
		scores.Close()
		os.Exit(0)
	}()

	log.Info("listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
