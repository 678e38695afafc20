package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/HaHaWTH/packetevents/internal/compression"
	"github.com/HaHaWTH/packetevents/internal/config"
	"github.com/HaHaWTH/packetevents/internal/event"
	"github.com/HaHaWTH/packetevents/internal/logger"
	"github.com/HaHaWTH/packetevents/internal/metrics"
	"github.com/HaHaWTH/packetevents/internal/protocol"
	"github.com/HaHaWTH/packetevents/internal/proxy"
)

func main() {

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
	})
	codec, err := compression.Lookup(cfg.Compression.Codec)
	if err != nil {
		slog.Error("Failed to resolve compression codec", "error", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	am := metrics.NewAppMetrics(reg)
	if cfg.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				slog.Error("Metrics endpoint stopped", "error", err)
			}
		}()
	}

	server := proxy.NewServer(cfg.ListenAddr(), cfg.BackendAddr(), codec, am)
	registerDebugListeners(server.Events())
	err = server.Start(ctx)
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

}

// registerDebugListeners wires a pair of listeners that log every
// intercepted frame's packet ID at debug level. They read from the event
// buffer; the interceptor restores the cursor after dispatch.
func registerDebugListeners(em *event.Manager) {
	for _, dir := range []event.Direction{event.Inbound, event.Outbound} {
		d := dir
		em.Register(d, func(evt *event.PacketEvent) {
			id, err := protocol.ReadVarint(evt.Buffer)
			if err != nil {
				return
			}
			slog.Debug("Intercepted packet", "connection", evt.Conn.ID(), "direction", d.String(), "packetID", id, "state", evt.Conn.State().Get().String())
		})
	}
}
