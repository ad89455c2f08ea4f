// Command ratelyd exposes a windowed job dispatcher over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/almgong/rately/pkg/rately"
)

// main launches ratelyd.
func main() {
	os.Exit(run())
}

// run executes ratelyd and returns an exit code.
func run() int {
	configPath := flag.String("config", "config.yaml", "path to ratelyd config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	log := newLogger(cfg.Log.Level)

	st := &stats{log: log}
	dispatcher, err := newDispatcher(cfg, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatcher error: %v\n", err)
		return 1
	}
	defer dispatcher.Stop()

	srv := &server{dispatcher: dispatcher, stats: st, log: log}
	mux := http.NewServeMux()
	srv.routes(mux)

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Info().
		Str("addr", cfg.Server.ListenAddr).
		Str("policy", cfg.Dispatcher.Policy).
		Msg("ratelyd listening")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("ratelyd stopped")
	return 0
}

// newDispatcher builds the configured dispatcher with the stats observer.
func newDispatcher(cfg config, observer rately.Observer) (*rately.Dispatcher, error) {
	dcfg := cfg.dispatcherConfig()
	if cfg.Dispatcher.Policy == "serial" {
		return rately.NewSerialWithObserver(dcfg, observer)
	}
	return rately.NewConcurrentWithObserver(dcfg, observer)
}

// newLogger builds a console logger at the configured level.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
