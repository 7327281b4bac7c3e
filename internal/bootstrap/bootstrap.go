package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	codecinadapter "scormtrack/internal/modules/suspenddata/adapter/in"
	codecusecase "scormtrack/internal/modules/suspenddata/usecase"
	trackinginadapter "scormtrack/internal/modules/tracking/adapter/in"
	trackingoutadapter "scormtrack/internal/modules/tracking/adapter/out"
	trackingout "scormtrack/internal/modules/tracking/port/out"
	"scormtrack/internal/platform/config"
	"scormtrack/internal/platform/logging"
	"scormtrack/internal/simulation"
	uiapp "scormtrack/internal/ui/app"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config config.Config
	Log    zerolog.Logger
	// Origin is the configured origin tier. Scenario replays use a private
	// memory tier unless asked to share this one.
	Origin trackingout.KeyValueStore

	closeOrigin func() error
}

func New(cfg config.Config) (*App, error) {
	log := logging.New(cfg.Log)

	origin, closeOrigin, err := newOriginStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", cfg.Storage.OriginBackend).Msg("origin storage ready")

	return &App{
		Config:      cfg,
		Log:         log,
		Origin:      origin,
		closeOrigin: closeOrigin,
	}, nil
}

// NewCodecCLI needs no configuration, so decode and encode skip opening
// any storage.
func NewCodecCLI() codecinadapter.CLIHandler {
	return codecinadapter.NewCLIHandler(codecusecase.NewInteractor())
}

func (a *App) Runner(shared bool) *simulation.Runner {
	var origin trackingout.KeyValueStore
	if shared {
		origin = a.Origin
	}
	return simulation.NewRunner(a.Config.Timing, origin, logging.Component(a.Log, "simulation", ""))
}

func newOriginStore(cfg config.Storage) (trackingout.KeyValueStore, func() error, error) {
	switch cfg.OriginBackend {
	case "memory":
		return trackingoutadapter.NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		store, err := trackingoutadapter.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("new sqlite origin store: %w", err)
		}
		return store, store.Close, nil
	case "redis":
		store := trackingoutadapter.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.RedisPrefix)
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown origin storage backend %q", cfg.OriginBackend)
}

func (a *App) Close() error {
	if a.closeOrigin == nil {
		return nil
	}
	return a.closeOrigin()
}

// Serve runs sc live and exposes the host side of the message protocol over
// WebSocket until ctx is cancelled.
func Serve(ctx context.Context, app *App, sc simulation.Scenario, listen string) error {
	var bridge atomic.Pointer[trackinginadapter.Bridge]
	live, err := app.Runner(true).Serve(ctx, sc, func(payload []byte) {
		if b := bridge.Load(); b != nil {
			_ = b.Broadcast(payload)
		}
	})
	if err != nil {
		return err
	}
	defer live.Close()
	bridge.Store(trackinginadapter.NewBridge(live, logging.Component(app.Log, "bridge", sc.ActivityID), app.Config.Bridge.InboundRPS))

	mux := http.NewServeMux()
	mux.Handle("/ws", bridge.Load())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	app.Log.Info().Str("listen", listen).Str("scenario", sc.Name).Msg("bridge listening on /ws")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve bridge: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown bridge: %w", err)
	}
	return nil
}

type scenarioPort struct {
	runner *simulation.Runner
	sc     simulation.Scenario
}

func (p scenarioPort) Run(ctx context.Context) (simulation.Result, error) {
	return p.runner.Run(ctx, p.sc)
}

// RunTUI replays sc in the watch interface.
func RunTUI(app *App, sc simulation.Scenario, shared bool) error {
	model := uiapp.NewModel(sc.Name, scenarioPort{runner: app.Runner(shared), sc: sc})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
