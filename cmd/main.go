package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/config"
	"github.com/SportsAmigo/SportsAmigo-sub000/db"
	"github.com/SportsAmigo/SportsAmigo-sub000/handlers"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
	"github.com/SportsAmigo/SportsAmigo-sub000/routes"
	"github.com/SportsAmigo/SportsAmigo-sub000/services"
	"golang.org/x/sync/errgroup"
)

const (
	dbConnectTimeout      = 10 * time.Second
	shutdownTimeout       = 15 * time.Second
	eventStatusSyncPeriod = time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application terminated", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), dbConnectTimeout)
	defer cancelMigrate()
	if err := db.Migrate(migrateCtx, database); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database ready")

	userRepo := repositories.NewPostgresUserRepository(database)
	teamRepo := repositories.NewPostgresTeamRepository(database)
	membershipRepo := repositories.NewPostgresMembershipRepository(database)
	joinRequestRepo := repositories.NewPostgresJoinRequestRepository(database)
	eventRepo := repositories.NewPostgresEventRepository(database)
	registrationRepo := repositories.NewPostgresRegistrationRepository(database)

	hub := notify.NewHub(logger)

	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo)
	rosterService := services.NewRosterService(membershipRepo, joinRequestRepo, teamRepo, hub)
	joinRequestService := services.NewJoinRequestService(joinRequestRepo, membershipRepo, teamRepo, rosterService, hub)
	eventService := services.NewEventService(eventRepo, logger)
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, teamRepo, hub)
	queryService := services.NewMembershipQueryService(membershipRepo, teamRepo, userRepo, rosterService)

	router := routes.InitRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Team:         handlers.NewTeamHandler(teamService, rosterService, queryService),
		JoinRequest:  handlers.NewJoinRequestHandler(joinRequestService),
		Event:        handlers.NewEventHandler(eventService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Websocket:    handlers.NewWebsocketHandler(hub, logger),
	}, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Periodically advance event statuses by their dates so that
	// registrations close when an event starts even if no organizer
	// touches it.
	g.Go(func() error {
		ticker := time.NewTicker(eventStatusSyncPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if err := eventService.AutoUpdateEventStatusesByDates(gCtx); err != nil {
					logger.Error("event status sync failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("stopped")
	return nil
}
