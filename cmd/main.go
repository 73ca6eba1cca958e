/*
Package main is the entry point for the lobbysync daemon.

It is responsible for loading configuration, initializing the global logging
system, opening the session cache, starting the synchronizer loop and the
event stream pump, serving the local HTTP API for the rendering layer, and
gracefully handling operating system interrupt signals (SIGINT, SIGTERM).
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lobbysync/internal/app/api"
	"lobbysync/internal/app/cache"
	"lobbysync/internal/app/lobby"
	"lobbysync/internal/app/transport"
	"lobbysync/internal/app/user"
	"lobbysync/internal/configs"
	"lobbysync/internal/handler"
	"lobbysync/internal/pkg/logx"
)

const (
	// reconnectBaseDelay and reconnectMaxDelay bound the event stream
	// redial backoff.
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

func main() {
	// A missing .env file is fine; environment variables take over.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("api_base_url", cfg.APIBaseURL).
		Str("event_stream_url", cfg.EventStreamURL).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		logx.Fatal(err, "Failed to open session cache")
	}
	defer sessionCache.Close()

	me := user.FromConfig(cfg)
	store := lobby.NewStore()
	reducer := lobby.NewReducer(me)
	signaler := lobby.NewTurnSignaler()
	sync := lobby.NewSynchronizer(store, reducer, sessionCache, signaler)

	gateway := api.NewClient(cfg, store, sync, me)

	go sync.Run(ctx)

	go runEventStream(ctx, cfg, sync, gateway)

	deps := &handler.AppDeps{
		Store:    store,
		Gateway:  gateway,
		Signaler: signaler,
		Config:   cfg,
		Me:       me,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("lobbysync daemon listening on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Daemon gracefully stopped.")
}

// runEventStream keeps the event stream alive for the life of the process.
// Every (re)connect runs session recovery first, so the gap between the old
// connection dying and the new one attaching is healed by an authoritative
// snapshot before live events resume.
func runEventStream(ctx context.Context, cfg *configs.AppConfig, sync *lobby.Synchronizer, gateway *api.Client) {
	delay := reconnectBaseDelay

	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := transport.Dial(ctx, cfg.EventStreamURL, cfg.SessionToken)
		if err != nil {
			logx.Warn("Event stream connection failed, retrying.",
				"delay", delay.String(), "error", err.Error())

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			delay = min(delay*2, reconnectMaxDelay)
			continue
		}

		delay = reconnectBaseDelay

		if err := sync.RecoverSession(ctx, gateway); err != nil {
			logx.Error(err, "Session recovery failed; continuing with live events only")
		}

		pumpDone := make(chan struct{})
		go func() {
			defer close(pumpDone)
			if err := sync.RunEventPump(ctx, stream); err != nil && err != context.Canceled {
				logx.Warn("Event pump stopped.", "error", err.Error())
			}
		}()

		select {
		case <-ctx.Done():
			stream.Close()
			<-pumpDone
			return
		case <-stream.Done():
			stream.Close()
			<-pumpDone
			logx.Warn("Event stream disconnected, reconnecting.")
		}
	}
}
