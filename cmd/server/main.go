package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arthurguedes375/agar.io/internal/config"
	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
	"github.com/arthurguedes375/agar.io/internal/handler"
	"github.com/arthurguedes375/agar.io/internal/sim"
	"github.com/arthurguedes375/agar.io/internal/store"
	"github.com/arthurguedes375/agar.io/internal/ws"
)

const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	cfg := config.Load()
	setupLogger(cfg, os.Stdout)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scores, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open score store", "error", err)
		os.Exit(1)
	}

	seed := time.Now().UnixNano()
	world := game.NewMap(rand.New(rand.NewSource(seed)), cfg.MapWidth, cfg.MapHeight, cfg.FruitCount, cfg.FruitRadius)
	engine := sim.NewEngine(game.NewGame(world, time.Now()), rand.New(rand.NewSource(seed+1)), sim.Options{
		MaxTickRate:    cfg.MaxTickRate,
		CommandBuffer:  cfg.CommandBuffer,
		SnapshotBuffer: cfg.SnapshotBuffer,
	})

	// Spawns are picked on the hub goroutine only.
	spawnRng := rand.New(rand.NewSource(seed + 2))
	router := handler.NewRouter(engine, func() geometry.Position {
		return game.RandomSpawn(spawnRng, cfg.MapWidth, cfg.MapHeight)
	}, cfg.InitialPlayerRadius)

	hub := ws.NewHub()
	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	go router.Serve(hubCtx, engine.Subscribe())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})
	var lister handler.ScoreLister
	if scores != nil {
		lister = scores
	}
	mux.HandleFunc("/leaderboard", handler.Leaderboard(lister))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	done := make(chan error, 1)
	go func() { done <- engine.Run(context.Background()) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		slog.Info("shutting down")
		quitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := engine.Send(quitCtx, sim.Quit{}); err != nil && !errors.Is(err, sim.ErrEngineStopped) {
			slog.Warn("failed to stop simulation", "error", err)
		}
		cancel()
		runErr = <-done
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	// Closes the remaining websocket connections.
	stopHub()
	<-hub.Done()

	if scores != nil {
		saveScores(shutdownCtx, scores, engine.Final())
		scores.Close()
	}

	if runErr != nil {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("score store disabled")
		return nil, nil
	}
	return store.NewPostgresStore(ctx, cfg.DatabaseURL)
}

func saveScores(ctx context.Context, scores store.ScoreStore, g game.Game) {
	records := store.ScoresFromGame(g, time.Now())
	if err := scores.SaveScores(ctx, records); err != nil {
		slog.Error("failed to save scores", "error", err)
		return
	}
	slog.Info("scores saved", "players", len(records))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(uuid.NewString(), hub, conn)
	select {
	case hub.Register <- client:
	case <-hub.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func setupLogger(cfg *config.Config, w io.Writer) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(h))
}
