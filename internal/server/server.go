package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/chat"
	"github.com/Tyrowin/roomrelay/internal/metrics"
)

// App owns every long-lived component of one relay instance.
type App struct {
	cfg        Config
	log        zerolog.Logger
	Registry   *chat.Registry
	Dispatcher *chat.Dispatcher
	Hub        *Hub
	Reaper     *chat.Reaper
	Metrics    *metrics.Metrics
	Handler    http.Handler

	stopReaper context.CancelFunc
	reaperDone chan struct{}
}

// NewApp wires a relay from cfg. Nothing runs until Start.
func NewApp(cfg Config, logger zerolog.Logger) *App {
	cfg = sanitizeConfig(cfg)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	registry := chat.NewRegistry(logger, m, cfg.HistoryLimit)
	hub := NewHub(logger, m)
	engine := chat.NewEngine(registry, hub, logger, m)
	dispatcher := chat.NewDispatcher(registry, engine, logger, m)
	hub.SetHandler(dispatcher)

	policy := newOriginPolicy(cfg.AllowedOrigins, logger)
	ws := WebSocketHandler(hub, newUpgrader(policy), cfg.MaxMessageSize)
	mux := SetupRoutes(ws, metrics.Handler(promRegistry))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: policy.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	return &App{
		cfg:        cfg,
		log:        logger,
		Registry:   registry,
		Dispatcher: dispatcher,
		Hub:        hub,
		Reaper:     chat.NewReaper(registry, cfg.ReapInterval, logger),
		Metrics:    m,
		Handler:    corsHandler.Handler(mux),
	}
}

// Start launches the hub loop and the reaper.
func (a *App) Start() {
	go a.Hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	a.stopReaper = cancel
	a.reaperDone = make(chan struct{})
	go func() {
		defer close(a.reaperDone)
		a.Reaper.Run(ctx)
	}()

	a.log.Info().Msg("hub and reaper started")
}

// Shutdown stops the reaper, then closes every client connection and waits
// for their goroutines up to timeout.
func (a *App) Shutdown(timeout time.Duration) error {
	if a.stopReaper != nil {
		a.stopReaper()
		<-a.reaperDone
	}
	if err := a.Hub.Shutdown(timeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.log.Warn().Dur("timeout", timeout).Msg("hub did not drain before timeout")
		}
		return err
	}
	return nil
}
