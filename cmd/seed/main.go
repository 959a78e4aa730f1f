package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/logger"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
	"github.com/rs/zerolog/log"
)

const (
	appName    = "faceoff-seed"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, "console", appName)
	log.Info().Msgf("=== %s v%s ===", appName, appVersion)

	var (
		dsn    = flag.String("dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
		file   = flag.String("file", "", "League JSON file (teams, players, games)")
		dryRun = flag.Bool("dry-run", false, "Validate the file without writing")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("Specify --file")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open league file")
	}
	lg, err := decodeLeague(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid league file")
	}
	log.Info().
		Int("teams", len(lg.Teams)).
		Int("players", len(lg.Players)).
		Int("games", len(lg.Games)).
		Msg("✓ League file validated")

	if *dryRun {
		log.Info().Msg("Dry run: nothing written")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := store.NewDatabase(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	if err := seed(ctx, db, lg); err != nil {
		log.Fatal().Err(err).Msg("seed league")
	}
	log.Info().Msg("✓ Seed completed successfully")
}

// seed upserts teams first, then players and games that reference them
func seed(ctx context.Context, db *store.Database, lg *league) error {
	teams := repository.NewTeamRepository(db)
	players := repository.NewPlayerRepository(db)
	games := repository.NewGameRepository(db)

	for i := range lg.Teams {
		if err := teams.Upsert(ctx, &lg.Teams[i]); err != nil {
			return fmt.Errorf("team %s: %w", lg.Teams[i].ID, err)
		}
	}
	log.Info().Int("count", len(lg.Teams)).Msg("✓ Teams upserted")

	for i := range lg.Players {
		if err := players.Upsert(ctx, &lg.Players[i]); err != nil {
			return fmt.Errorf("player %s: %w", lg.Players[i].ID, err)
		}
	}
	log.Info().Int("count", len(lg.Players)).Msg("✓ Players upserted")

	for i := range lg.Games {
		if err := games.Upsert(ctx, &lg.Games[i]); err != nil {
			return fmt.Errorf("game %s: %w", lg.Games[i].ID, err)
		}
	}
	log.Info().Int("count", len(lg.Games)).Msg("✓ Games upserted")

	return nil
}
