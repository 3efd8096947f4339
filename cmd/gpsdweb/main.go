// gpsdweb serves a live monitor for one gpsd daemon: a JSON status
// endpoint and a websocket pushing fix updates as they arrive.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gpsdclient/feed"
	"gpsdclient/gpsd"
	"gpsdclient/internal/config"
	"gpsdclient/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./gpsdweb.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	log := cfg.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := feed.New(feed.Config{
		Addr:           cfg.GPSD.Addr,
		DialTimeout:    cfg.GPSD.DialTimeout,
		ReconnectDelay: cfg.GPSD.ReconnectDelay,
		MaxBackoff:     cfg.GPSD.MaxBackoff,
		Logger:         log,
	})
	if err != nil {
		log.Error("feed init failed", "err", err)
		os.Exit(1)
	}

	broadcaster := web.NewFixBroadcaster()
	onReport := func(r gpsd.DataReport) {
		broadcaster.Publish(svc.Snapshot())
	}
	if err := svc.Start(ctx, onReport); err != nil {
		log.Error("feed start failed", "err", err)
		os.Exit(1)
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:    cfg.Web.Listen,
		Handler: web.Handler(svc.Snapshot, broadcaster, log),
	}

	go func() {
		log.Info("gpsdweb listening", "addr", cfg.Web.Listen, "gpsd", cfg.GPSD.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("gpsdweb stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
