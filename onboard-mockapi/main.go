// Command onboard-mockapi serves a local onboarding backend for development.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rhystmorgan/onboardTerm/internal/logger"
	"rhystmorgan/onboardTerm/internal/mockapi"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	reject := flag.String("reject", "", `rejected corporation numbers, e.g. "111111111=Not registered,222222222"`)
	latency := flag.Duration("latency", 0, "delay added to every response")
	logDir := flag.String("log-dir", "logs", "directory for JSON logs")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logOut, err := logger.New(*logDir, true, *debug)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	rejected := mockapi.ParseRejected(*reject)
	mock := mockapi.NewServer(mockapi.Options{
		Rejected: rejected,
		Latency:  *latency,
		Log:      logOut,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mock.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logOut.Infow("mock backend listening", "addr", *addr, "rejected", len(rejected), "latency", *latency)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Infow("mock backend stopped", "profiles", len(mock.Profiles()), "lookups", mock.Lookups())
}
