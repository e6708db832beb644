package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"web-desktop/internal/config"
	"web-desktop/internal/db"
	"web-desktop/internal/server"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	cfg.ConfigureLogging()

	var conn *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		conn, err = db.Open(cfg.DatabaseURL, db.Pool{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
	} else {
		log.Warn().Msg("DATABASE_URL is not set; state is kept in memory")
	}

	srv := server.New(conn, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", httpServer.Addr).Msg("web-desktop server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
