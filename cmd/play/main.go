package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/arthurguedes375/agar.io/internal/config"
	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/sim"
	"github.com/arthurguedes375/agar.io/internal/store"
	"github.com/arthurguedes375/agar.io/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agar: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal owns stdout.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	setupLogger(cfg, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	world := game.NewMap(rng, cfg.MapWidth, cfg.MapHeight, cfg.FruitCount, cfg.FruitRadius)
	engine := sim.NewEngine(game.NewGame(world, time.Now()), rng, sim.Options{
		MaxTickRate:    cfg.MaxTickRate,
		CommandBuffer:  cfg.CommandBuffer,
		SnapshotBuffer: cfg.SnapshotBuffer,
	})

	player := game.NewPlayer(cfg.PlayerName, game.RandomSpawn(rng, cfg.MapWidth, cfg.MapHeight), cfg.InitialPlayerRadius)
	if err := engine.Send(ctx, sim.RegisterPlayer{Player: *player}); err != nil {
		return fmt.Errorf("register player: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)

	sound, err := tui.NewSound()
	if err != nil {
		// Non-fatal, the game runs without sound.
		slog.Warn("audio initialization failed", "error", err)
	}

	renderer := tui.NewRenderer(screen, engine, player.ID, tui.DefaultCellScale, sound)
	sub := engine.Subscribe()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	if err := renderer.Run(ctx, sub); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("renderer failed", "error", err)
	}
	runErr := <-done

	sound.Close()
	screen.Fini()

	final := engine.Final()
	if p, ok := final.Player(player.ID); ok {
		fmt.Printf("%s finished with score %d after %d ticks\n", p.Name, p.Score(), final.Tick)
	}

	if cfg.DatabaseURL != "" {
		saveScores(cfg.DatabaseURL, final)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("simulation: %w", runErr)
	}
	return nil
}

func saveScores(databaseURL string, g game.Game) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scores, err := store.NewPostgresStore(ctx, databaseURL)
	if err != nil {
		slog.Error("failed to open score store", "error", err)
		return
	}
	defer scores.Close()

	records := store.ScoresFromGame(g, time.Now())
	if err := scores.SaveScores(ctx, records); err != nil {
		slog.Error("failed to save scores", "error", err)
		return
	}
	slog.Info("scores saved", "players", len(records))
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
