package main

import (
	"errors"
	"flag"

	"web-desktop/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	cfg.ConfigureLogging()
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://db/migrations", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("migration setup failed")
	}
	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrations applied")
}
