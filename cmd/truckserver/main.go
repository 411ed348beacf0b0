package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/config"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/db"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/event"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/session"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/snapshot"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/wallet"
)

const ConfigPath = "config/truckserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("TRUCK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	slog.Info("truck server starting",
		"log_level", cfg.LogLevel,
		"economy", cfg.Economy.Preset,
		"storage", cfg.Storage.Backend)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	bus := event.NewBus()
	defer bus.Close()
	events, unsubscribe := bus.Subscribe(64)
	defer unsubscribe()

	opts := []session.Option{
		session.WithStore(store),
		session.WithSaveTimeout(cfg.Session.SaveTimeout),
	}
	if cfg.Session.ID != "" {
		opts = append(opts, session.WithID(cfg.Session.ID))
	}

	sess, err := session.New(cfg.Economy, wallet.New(cfg.Economy.StartingBalance), bus, opts...)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	found, err := sess.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if !found {
		slog.Info("starting new session", "session", sess.ID())
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logEvents(gctx, events)
		return nil
	})

	g.Go(func() error {
		slog.Info("starting tick loop", "interval", cfg.Session.TickInterval)
		if err := sess.RunTickLoop(gctx, cfg.Session.TickInterval); err != nil && gctx.Err() == nil {
			return fmt.Errorf("tick loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting save loop", "interval", cfg.Session.SaveInterval)
		if err := sess.RunSaveLoop(gctx, cfg.Session.SaveInterval); err != nil && gctx.Err() == nil {
			return fmt.Errorf("save loop: %w", err)
		}
		return nil
	})

	autoCollect := production.NewAutoCollector(cfg.Session.AutoCollectInterval)
	g.Go(func() error {
		slog.Info("starting auto-collect", "interval", autoCollect.Interval())
		if err := sess.RunAutoCollect(gctx, autoCollect); err != nil && gctx.Err() == nil {
			return fmt.Errorf("auto-collect: %w", err)
		}
		return nil
	})

	slog.Info("session running", "session", sess.ID())

	if err := g.Wait(); err != nil {
		return err
	}

	state := sess.State()
	slog.Info("truck server stopped",
		"session", sess.ID(),
		"quantity", state.Quantity,
		"balance", sess.Balance())
	return nil
}

// openStore builds the configured snapshot backend.
func openStore(ctx context.Context, cfg config.Server) (snapshot.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		dsn := cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		return db.NewSnapshotRepository(database.Pool()), database.Close, nil

	default:
		fs, err := snapshot.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening save directory: %w", err)
		}
		slog.Info("file storage ready", "dir", fs.Dir())
		return fs, func() {}, nil
	}
}

func logEvents(ctx context.Context, events <-chan event.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case event.SaveFailed:
				slog.Warn("save failed", "error", ev.Err)
			case event.ProductionUpdated:
				slog.Debug("production", "current", ev.Current, "capacity", ev.Capacity)
			case event.Collected:
				slog.Info("collected", "amount", ev.Amount)
			case event.RateUpgraded:
				slog.Info("rate upgraded", "rate", ev.NewRate)
			case event.CapacityUpgraded:
				slog.Info("capacity upgraded", "capacity", ev.NewCapacity)
			}
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
