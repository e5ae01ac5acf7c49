// cmd/simtemp/run.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/simtemp/internal/device"
	"github.com/tamzrod/simtemp/internal/sink"
)

// runCmd attaches the device and relays every sample to the configured sinks
// until interrupted.
func runCmd(ctx context.Context, args []string) error {
	path, rest := splitArgs(args)

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	// --------------------
	// Sinks
	// --------------------

	sinks, err := sink.Build(ctx, cfg.Sinks, cfg.Device.Name)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warn("sink close", "err", err)
		}
	}()
	if len(sinks.Deliverers) == 0 && sinks.Status == nil {
		log.Warn("no sinks configured, samples are drained and discarded")
	}

	// --------------------
	// Metrics endpoint
	// --------------------

	if cfg.Metrics.Listen != "" {
		srv := metricsServer(cfg.Metrics.Listen)
		go func() {
			log.Info("metrics listening", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "err", err)
			}
		}()
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shCtx); err != nil {
				log.Error("metrics shutdown", "err", err)
			}
		}()
	}

	// --------------------
	// Device + relay
	// --------------------

	dev, err := device.Attach(cfg.Device, device.WithLogger(log))
	if err != nil {
		return err
	}
	defer dev.Detach()

	sess, err := dev.Open(device.OpenOptions{})
	if err != nil {
		return err
	}
	defer sess.Close()

	opts := []sink.RelayOption{
		sink.WithLogger(log.With("component", "relay")),
		sink.WithStaleAfter(3 * cfg.Device.Interval()),
	}
	if sinks.Status != nil {
		opts = append(opts, sink.WithStatus(sinks.Status))
	}

	err = sink.NewRelay(sess, sinks.Deliverers, opts...).Run(ctx)

	st := dev.Stats()
	log.Info("relay stopped",
		"generated", st.Generated,
		"delivered", st.Delivered,
		"dropped", st.Dropped,
		"exceeded", st.Exceeded,
	)
	return err
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
