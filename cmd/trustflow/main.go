package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustflow/internal/config"
	"trustflow/internal/counterparty"
	"trustflow/internal/db"
	"trustflow/internal/execution"
	"trustflow/internal/feedback"
	"trustflow/internal/market"
	"trustflow/internal/oracle"
	"trustflow/internal/pipeline"
	"trustflow/internal/policy"
	"trustflow/internal/server"
	"trustflow/internal/strategy"
)

func main() {
	// Parse CLI flags.
	productFile := flag.String("product", "", "Run the pipeline once for the product JSON file and exit")
	configFlag := flag.String("config", "", "Path to the TOML config file")
	flag.Parse()

	// Load configuration.
	configPath := "config.toml"
	if p := os.Getenv("TF_CONFIG_PATH"); p != "" {
		configPath = p
	}
	if *configFlag != "" {
		configPath = *configFlag
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging.
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.General.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	slog.Info("trustflow starting")

	// Initialize database.
	database, err := db.Open(cfg.General.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized", "path", cfg.General.DBPath)

	// Seed the counterparty registry from config.
	registry := counterparty.NewSQLRegistry(database)
	if err := registry.Seed(context.Background(), cfg.Registry.Counterparties); err != nil {
		slog.Error("failed to seed counterparty registry", "error", err)
		os.Exit(1)
	}
	slog.Info("counterparty registry seeded", "entries", len(cfg.Registry.Counterparties))

	// Resolve the active strategy set.
	set, ok := strategy.SetByName(cfg.Pipeline.StrategySet)
	if !ok {
		slog.Error("unknown strategy set", "name", cfg.Pipeline.StrategySet)
		os.Exit(1)
	}
	slog.Info("strategy set active", "name", cfg.Pipeline.StrategySet, "strategies", set.IDs())

	// Wire the pipeline stages.
	if cfg.Oracle.Endpoint == "" {
		slog.Warn("no oracle endpoint configured, every run will use the fallback decision")
	}
	advisory := oracle.NewClient(cfg.Oracle)

	signals := market.NewCachedSignals(market.NewStaticSignals(cfg.Market), cfg.Market.SignalTTL.Duration)
	var narrator market.Narrator
	if advisory.HasInsights() {
		narrator = advisory
	}
	builder := market.NewBuilder(signals, registry, narrator)

	pol := policy.New(set, advisory, cfg.Pipeline.FallbackConfidence, cfg.Pipeline.MinProfitMargin)

	orchestrator := execution.NewOrchestrator(
		execution.LogLedger{}, execution.LogNotifier{},
		execution.NewSequencer(), cfg.Pipeline.OpTimeout.Duration,
	)

	store := feedback.NewStore(database)
	runner := pipeline.NewRunner(
		builder,
		strategy.NewProfitModel(set),
		pol,
		counterparty.NewRanker(registry, cfg.Pipeline.MinCreditScore),
		orchestrator,
		store,
		cfg.Pipeline.MaxBuyersListed,
		cfg.Pipeline.MaxBuyersContacted,
	)

	// One-shot mode.
	if *productFile != "" {
		if err := runOnce(runner, *productFile); err != nil {
			slog.Error("one-shot run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Serve the trigger API.
	srv := server.New(cfg.Server.ListenAddr, server.NewHandler(runner, store))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("trustflow stopped")
}

// runOnce runs the pipeline for a single product read from a JSON file and
// prints the structured result to stdout.
func runOnce(runner *pipeline.Runner, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var p strategy.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	res := runner.Run(context.Background(), p)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
