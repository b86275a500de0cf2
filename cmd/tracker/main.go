package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paladin-bladesmith/bifrost/internal/config"
	"github.com/paladin-bladesmith/bifrost/internal/logging"
	"github.com/paladin-bladesmith/bifrost/internal/metrics"
	"github.com/paladin-bladesmith/bifrost/internal/registry"
	"github.com/paladin-bladesmith/bifrost/internal/server"
	"github.com/paladin-bladesmith/bifrost/internal/stake"
	"github.com/paladin-bladesmith/bifrost/internal/storage"
	"github.com/paladin-bladesmith/bifrost/internal/tracker"
)

func main() {
	var (
		configFile    = flag.String("config", "", "Path to config file (YAML)")
		listenAddr    = flag.String("listen", "", "Schedule API listen address (overrides config)")
		metricsAddr   = flag.String("metrics-listen", "", "Metrics listen address (overrides config, enables metrics)")
		logLevel      = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
		dbPath        = flag.String("db", "", "LevelDB path for stake snapshots (overrides config)")
		stakeFile     = flag.String("stakes", "", "Validator stake file (overrides config, selects the file source)")
		slotsPerEpoch = flag.Uint64("slots-per-epoch", 0, "Slots per epoch (overrides config)")
		leaderSpan    = flag.Uint64("leader-slot-span", 0, "Consecutive slots per leader draw (overrides config)")
		retained      = flag.Int("retained-epochs", 0, "Schedules kept in memory (overrides config)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config file %s: %v", *configFile, err)
		}
		cfg = loaded
	}

	// Command line overrides
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dbPath != "" {
		cfg.Storage.LevelDBPath = *dbPath
	}
	if *stakeFile != "" {
		cfg.Stake.Source = config.StakeSourceFile
		cfg.Stake.File = *stakeFile
	}
	if *slotsPerEpoch > 0 {
		cfg.Epoch.SlotsPerEpoch = *slotsPerEpoch
	}
	if *leaderSpan > 0 {
		cfg.Epoch.LeaderSlotSpan = *leaderSpan
	}
	if *retained > 0 {
		cfg.Cache.RetainedEpochs = *retained
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.Init(cfg.LogLevel)
	logger := logging.NewDefaultLogger()

	logger.Infof("Starting schedule tracker slots_per_epoch=%d leader_slot_span=%d stake_source=%s",
		cfg.Epoch.SlotsPerEpoch, cfg.Epoch.LeaderSlotSpan, cfg.Stake.Source)

	// Stake source and validator endpoints
	book := registry.NewEndpointBook()
	var source stake.Source
	switch cfg.Stake.Source {
	case config.StakeSourceFile:
		fileSource, err := stake.NewFileSource(cfg.Stake.File)
		if err != nil {
			log.Fatalf("Failed to load stake file %s: %v", cfg.Stake.File, err)
		}
		book.ReplaceAll(fileSource.Endpoints())
		source = fileSource
	case config.StakeSourceStatic:
		entries, endpoints, err := cfg.Stake.ToStakeEntries()
		if err != nil {
			log.Fatalf("Invalid static stake entries: %v", err)
		}
		book.ReplaceAll(endpoints)
		source = stake.NewStaticSource(entries)
	default:
		log.Fatalf("Unknown stake source: %s", cfg.Stake.Source)
	}

	// Persist stake snapshots when a database path is configured
	var store storage.Store
	if cfg.Storage.LevelDBPath != "" {
		snapshots, err := storage.NewSnapshotStore(cfg.Storage.LevelDBPath)
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		store = snapshots
		wrapped, err := stake.NewStoreSource(source, store, logger)
		if err != nil {
			log.Fatalf("Failed to wrap stake source: %v", err)
		}
		source = wrapped
		if epochs, err := store.Epochs(); err == nil && len(epochs) > 0 {
			logger.Infof("Snapshot store %s holds %d epochs", cfg.Storage.LevelDBPath, len(epochs))
		}
	}

	// Metrics server
	var provider metrics.Provider = metrics.Noop{}
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		prom := metrics.NewProm()
		provider = prom

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warnf("Metrics server exited with error error=%v", err)
			}
		}()
		logger.Infof("Serving metrics on %s", cfg.Metrics.ListenAddr)
	}

	tr, err := tracker.New(tracker.Config{
		SlotsPerEpoch:  cfg.Epoch.SlotsPerEpoch,
		LeaderSlotSpan: cfg.Epoch.LeaderSlotSpan,
		RetainedEpochs: cfg.Cache.RetainedEpochs,
	}, source, book, tracker.Handlers{
		OnEpochRotated: func(prev, cur uint64) {
			logger.Infof("Leader schedule rotated epoch %d -> %d", prev, cur)
		},
	}, logger, provider)
	if err != nil {
		log.Fatalf("Failed to create schedule tracker: %v", err)
	}

	srv := server.New(cfg.Server.ListenAddr, tr, logger)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start schedule API: %v", err)
	}

	logger.Info("Schedule tracker is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down schedule tracker...")
	srv.Stop()
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
			logger.Warnf("Failed to shutdown metrics server error=%v", err)
		}
		cancel()
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warnf("Failed to close snapshot store error=%v", err)
		}
	}

	logger.Info("Schedule tracker shutdown complete")
}
