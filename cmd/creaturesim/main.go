package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creaturepen/simcore/internal/config"
	"github.com/creaturepen/simcore/internal/data"
	"github.com/creaturepen/simcore/internal/metrics"
	"github.com/creaturepen/simcore/internal/persist"
	"github.com/creaturepen/simcore/internal/scripting"
	"github.com/creaturepen/simcore/internal/sim"
	"github.com/creaturepen/simcore/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const statusInterval = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Species and emotes
	printSection("Data")
	species, err := data.LoadSpeciesTable(cfg.World.SpeciesFile)
	if err != nil {
		return fmt.Errorf("load species: %w", err)
	}
	printStat("Species", species.Count())
	printStat("Emotes", len(species.Emotes()))
	fmt.Println()

	// 4. Metrics
	var collector *metrics.SimCollector
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		collector, err = metrics.NewSimCollector(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metricsSrv = serveMetrics(cfg.Metrics.BindAddress, collector, log)
	}

	// 5. Clock
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock, err := sim.New(sim.Options{
		TickRate:           cfg.Simulation.TickRate,
		MaxTicksPerAdvance: cfg.Simulation.MaxTicksPerAdvance,
		Seed:               seed,
		Emotes:             species.Emotes(),
		EventRetention:     cfg.Simulation.EventRetention,
		Metrics:            collector,
	}, log)
	if err != nil {
		return fmt.Errorf("clock: %w", err)
	}

	// 6. Observers
	printSection("Observers")
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		clock.Subscribe(engine.HandleEvent)
		if engine.HasTickHandler() {
			clock.OnTick(engine.HandleTick)
		}
		printOK("Lua scripts loaded from " + cfg.Scripting.Dir)
	}

	var journal *persist.Journal
	var repo *persist.EventRepo
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		err = db.Migrate(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}

		repo = persist.NewEventRepo(db)
		journal = persist.NewJournal(repo, cfg.Journal.FlushIntervalTicks, cfg.Journal.MaxBuffered, log)
		clock.Subscribe(journal.Record)
		clock.OnTick(journal.OnTick)
		printOK("Event journal run " + journal.RunID().String())
	}
	fmt.Println()

	// 7. Spawn
	bounds := world.Rect{W: cfg.World.Width, H: cfg.World.Height}
	ids, err := spawnCreatures(clock, species, cfg.World.Creatures, bounds, rand.New(rand.NewSource(seed+1)))
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}

	// 8. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	frames := time.NewTicker(cfg.Simulation.FrameInterval)
	defer frames.Stop()
	status := time.NewTicker(statusInterval)
	defer status.Stop()

	printSection("Census")
	for _, line := range speciesCensus(clock.Snapshot().Entities, species) {
		printStat(line.Name, line.Count)
	}
	fmt.Println()

	printSection("Ready")
	printReady(fmt.Sprintf("%d creatures in %gx%g", len(ids), bounds.W, bounds.H))
	printReady(fmt.Sprintf("Tick %s, seed %d", clock.TickDuration(), seed))
	fmt.Println()

	clock.Start()
	last := time.Now()
	for {
		select {
		case now := <-frames.C:
			if _, err := clock.Advance(now.Sub(last)); err != nil {
				log.Error("advance failed", zap.Error(err))
			}
			last = now
		case <-status.C:
			snap := clock.Snapshot()
			log.Info("simulation status",
				zap.Uint64("tick", snap.Tick),
				zap.Int("entities", len(snap.Entities)),
				zap.Uint64("last_event", clock.LastEventSeq()))
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			clock.Stop()
			shutdown(journal, repo, metricsSrv, log)
			log.Info("simulation stopped", zap.Uint64("tick", clock.TickCount()))
			return nil
		}
	}
}

func shutdown(journal *persist.Journal, repo *persist.EventRepo, metricsSrv *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if journal != nil {
		if err := journal.Flush(ctx); err != nil {
			log.Error("final journal flush failed", zap.Int("buffered", journal.Buffered()), zap.Error(err))
		}
		if n := journal.Dropped(); n > 0 {
			log.Warn("journal dropped events on overflow", zap.Int("dropped", n))
		}
		if rows, err := repo.CountEvents(ctx, journal.RunID()); err != nil {
			log.Warn("count journaled events failed", zap.Error(err))
		} else {
			log.Info("journal closed",
				zap.Stringer("run_id", journal.RunID()),
				zap.Int64("rows", rows),
				zap.Int("written", journal.Written()))
		}
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
}

func serveMetrics(addr string, collector *metrics.SimCollector, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server exited", zap.Error(err))
		}
	}()

	log.Info("serving Prometheus metrics", zap.String("addr", addr))
	return srv
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
