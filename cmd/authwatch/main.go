package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/roadmapapp/go-auth-client/appstate"
	"github.com/roadmapapp/go-auth-client/auth"
	"github.com/roadmapapp/go-auth-client/authsync"
	"github.com/roadmapapp/go-auth-client/gateway/supabase"
	"github.com/roadmapapp/go-auth-client/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running authwatch: %s\n", err)
	}
	log.Printf("authwatch stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	displayAppname(c.AppName)

	logger := newLogger(c)

	client, err := supabase.NewClient(
		c.SupabaseURL,
		c.SupabaseAnonKey,
		supabase.WithHTTPClient(&http.Client{Timeout: c.HTTPTimeout}),
		supabase.WithClientLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sync := authsync.New(client, authsync.WithLogger(logger))
	sync.Start(ctx)
	defer sync.Close()

	service, err := auth.NewService(auth.Deps{
		Auth:     client,
		Profiles: client,
		Sync:     sync,
	}, auth.WithServiceLogger(logger))
	if err != nil {
		return err
	}

	state := appstate.New(service, appstate.WithLogger(logger))
	state.Start(ctx)
	defer state.Close()

	go watchTransitions(ctx, service, state, logger)

	logger.Info().Str("url", c.SupabaseURL).Msg("watching auth state")
	<-ctx.Done()
	return nil
}

func watchTransitions(ctx context.Context, service *auth.Service, state *appstate.AppState, logger zerolog.Logger) {
	for resolved := range service.ObserveAuthState(ctx) {
		snap := state.Snapshot()
		event := logger.Info().
			Stringer("status", resolved.Status).
			Bool("authenticated", snap.Authenticated)
		if resolved.Profile != nil {
			event = event.
				Str("user", snap.DisplayName()).
				Int("level", resolved.Profile.Level).
				Int("total_xp", resolved.Profile.TotalXP).
				Int("current_streak", resolved.Profile.CurrentStreak).
				Bool("lifetime_premium", resolved.Profile.IsLifetimePremium)
		}
		event.Msg("auth state")
	}
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
