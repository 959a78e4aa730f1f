package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/ingest/sheet"
	"github.com/fortuna/faceoff/internal/logger"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/service"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
	"github.com/rs/zerolog/log"
)

const (
	appName    = "faceoff-import"
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
		dsn      = flag.String("dsn", cfg.DatabaseDSN, "PostgreSQL DSN")
		redisURL = flag.String("redis", cfg.RedisURL, "Redis URL for cache invalidation and live notices (empty to skip)")
		gameID   = flag.String("game", "", "Game ID or slug the sheet belongs to")
		file     = flag.String("file", "", "HTML scoresheet to import")
		dryRun   = flag.Bool("dry-run", false, "Parse and print the summary without writing")
		appendTo = flag.Bool("append", false, "Allow importing into a game that already has events")
	)
	flag.Parse()

	if *gameID == "" || *file == "" {
		log.Fatal().Msg("Specify --game and --file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := store.NewDatabase(*dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	games := repository.NewGameRepository(db)
	teams := repository.NewTeamRepository(db)
	players := repository.NewPlayerRepository(db)
	events := repository.NewEventRepository(db)

	game, err := games.GetByID(ctx, *gameID)
	if err != nil {
		log.Fatal().Err(err).Msg("load game")
	}
	allTeams, err := teams.GetAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load teams")
	}
	roster, err := players.GetByTeams(ctx, game.HomeTeamID, game.AwayTeamID)
	if err != nil {
		log.Fatal().Err(err).Msg("load rosters")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open scoresheet")
	}
	defer f.Close()

	parsed, err := sheet.Parse(f)
	if err != nil {
		log.Fatal().Err(err).Msg("parse scoresheet")
	}

	rows, warnings, err := parsed.Events(game, allTeams, roster)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve scoresheet")
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	existing, err := events.ListByGame(ctx, game.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("load existing events")
	}

	summary := scoring.Summarize(game, append(existing, rows...), roster, allTeams)
	printSummary(summary)

	if *dryRun {
		log.Info().Int("events", len(rows)).Msg("Dry run: nothing written")
		return
	}
	if len(existing) > 0 && !*appendTo {
		log.Fatal().Int("existing", len(existing)).Msg("Game already has events; pass --append to add to them")
	}

	if err := events.Insert(ctx, rows); err != nil {
		log.Fatal().Err(err).Msg("insert events")
	}
	log.Info().Int("events", len(rows)).Str("game_id", game.ID).Msg("✓ Import completed successfully")

	notify(ctx, *redisURL, game)
}

// notify drops cached views of the game and tells live clients to refresh
func notify(ctx context.Context, redisURL string, game *store.Game) {
	if redisURL == "" {
		return
	}

	rc, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; cached views will expire on their own")
		return
	}
	defer rc.Close()

	keys := []string{
		cache.SummaryKey(game.ID),
		cache.LeadersKey(game.Season),
		cache.StandingsKey(game.Season, service.StandingsFromView),
		cache.StandingsKey(game.Season, service.StandingsComputed),
	}
	if err := rc.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}

	pub := publisher.NewRedisStreamPublisher(rc.Client())
	if err := pub.Publish(ctx, publisher.Notice{GameID: game.ID, Kind: publisher.KindImport}); err != nil {
		log.Warn().Err(err).Msg("publishing import notice failed")
	}
}

func printSummary(s *scoring.GameSummary) {
	fmt.Printf("%s %d - %d %s\n", s.Away.Label, s.Away.Goals, s.Home.Goals, s.Home.Label)
	for _, row := range s.Linescore.Rows() {
		fmt.Printf("  P%d  %d - %d\n", row.Period, row.Away, row.Home)
	}
	for _, g := range s.Goals {
		fmt.Printf("  P%d %s %-4s %s", g.Period, g.Time, g.TeamShort, g.ScorerName())
		for i, a := range g.Assists {
			sep := ", "
			if i == 0 {
				sep = " ("
			}
			fmt.Printf("%s%s", sep, a.Name)
		}
		if len(g.Assists) > 0 {
			fmt.Print(")")
		}
		fmt.Println()
	}
}
