package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/config"
	"github.com/xenn00/personnel-directory/internal/avatar"
	"github.com/xenn00/personnel-directory/internal/handlers"
	user_handler "github.com/xenn00/personnel-directory/internal/handlers/user-handler"
	user_repo "github.com/xenn00/personnel-directory/internal/repo/user"
	"github.com/xenn00/personnel-directory/internal/routers"
	user_service "github.com/xenn00/personnel-directory/internal/use-case/user-case"
	"github.com/xenn00/personnel-directory/state"
)

func main() {
	configDir := flag.String("config", ".", "directory holding application.yaml")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	conf, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	for _, dir := range []string{conf.AVATAR.TempDir, conf.AVATAR.StaticRoot + avatar.PublicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to prepare directory")
		}
	}

	appState, err := state.InitAppState(ctx, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	pipeline := avatar.NewPipeline(avatar.Config{
		StaticRoot: conf.AVATAR.StaticRoot,
		TempDir:    conf.AVATAR.TempDir,
		Size:       conf.AVATAR.Size,
		Quality:    conf.AVATAR.Quality,
	})
	repo := user_repo.NewUserRepo(appState.Users(), appState.Redis, conf.DATABASE.Redis.CacheTTL)
	service := user_service.NewUserService(repo, pipeline)
	userHandler := user_handler.NewUserHandler(service, pipeline, handlers.JSONRenderer{}, conf.AVATAR.MaxUploadBytes)

	server := &http.Server{
		Addr:         conf.App.Port,
		Handler:      routers.NewRouter(userHandler, conf.AVATAR.StaticRoot),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting %s on http://localhost%s", conf.App.Name, conf.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("Server exited gracefully.")
	}
}
