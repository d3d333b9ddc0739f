package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookstream/hookstream/server/internal/api"
	"github.com/hookstream/hookstream/server/internal/auth"
	"github.com/hookstream/hookstream/server/internal/config"
	"github.com/hookstream/hookstream/server/internal/metrics"
	"github.com/hookstream/hookstream/server/internal/receiver"
	"github.com/hookstream/hookstream/server/internal/relay"
	"github.com/hookstream/hookstream/server/internal/store"
	"github.com/hookstream/hookstream/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	watch := flag.Bool("watch", true, "reload auth keys, streams and relay targets when the config file changes")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("hookstream-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.SlogLevel())

	keys, err := cfg.Server.Auth.KeySet()
	if err != nil {
		slog.Error("failed to resolve API keys", "err", err)
		os.Exit(1)
	}
	keyring := auth.NewKeyring(keys)

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"api_keys", keyring.Len(),
		"default_stream", cfg.Server.DefaultStream,
		"retention", cfg.Server.Store.Retention,
		"relay_targets", len(cfg.Server.Relay.Targets),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Message store with background retention eviction.
	st := store.New(cfg.Server.Store.Retention, cfg.Server.Store.MaxPerStream)
	go st.Run(ctx)

	reg := metrics.NewRegistry()

	rl := relay.New(cfg.Server.Relay, reg)

	// WebSocket hub pushes each new message to subscribed UI clients.
	hub := ws.New(st)
	go hub.Run(ctx)

	reg.GaugeFunc("hookstream_ws_clients", "Connected WebSocket clients.", func() float64 {
		return float64(hub.Count())
	})
	reg.GaugeFunc("hookstream_stored_messages", "Messages currently retained in memory.", func() float64 {
		return float64(st.Count())
	})

	rec := receiver.New(st, hub, rl, reg, cfg.Server.Streams, cfg.Server.DefaultStream)

	if *watch {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				level.Set(next.Server.SlogLevel())
				if keys, err := next.Server.Auth.KeySet(); err != nil {
					slog.Error("config reload: keeping previous API keys", "err", err)
				} else {
					keyring.Replace(keys)
				}
				rec.SetStreams(next.Server.Streams, next.Server.DefaultStream)
				rl.SetTargets(next.Server.Relay.Targets)
				slog.Info("config applied",
					"api_keys", keyring.Len(),
					"default_stream", next.Server.DefaultStream,
					"relay_targets", len(next.Server.Relay.Targets),
				)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/external/splunk",
		auth.Middleware(cfg.Server.Auth.Mode, cfg.Server.Auth.EffectiveHeader(), keyring, rec))
	mux.Handle("/api/", api.New(st, hub.Count))
	mux.Handle("/ws/stream", hub)
	mux.Handle("/metrics", reg.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("hookstream-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), config.DefaultShutdownGrace)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "err", err)
	}
	if !rl.Wait(config.DefaultShutdownGrace) {
		slog.Warn("relay deliveries still in flight at exit")
	}
}
