package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/faceoff/internal/logger"
	"github.com/rs/zerolog"
)

// ViewRefresher recomputes a season's cached league tables
type ViewRefresher interface {
	Refresh(ctx context.Context, season string) error
}

// GameFinalizer closes out games left in progress
type GameFinalizer interface {
	CleanupStaleGames(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Orchestrator runs the periodic maintenance loops
type Orchestrator struct {
	views  ViewRefresher
	games  GameFinalizer
	config *Config
	log    zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// Config holds scheduler configuration
type Config struct {
	RefreshInterval time.Duration // Default: 1m
	CurrentSeason   string        // e.g., "2025-26"
	StaleGameAfter  time.Duration // Default: 6h
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: time.Minute,
		CurrentSeason:   "2025-26",
		StaleGameAfter:  6 * time.Hour,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(views ViewRefresher, games GameFinalizer, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	return &Orchestrator{
		views:  views,
		games:  games,
		config: config,
		log:    logger.Component("scheduler"),
	}
}

// Start runs the loops until ctx is cancelled or Stop is called. It returns
// immediately if Stop already ran.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.cancel = cancel
	o.wg.Add(1)
	o.mu.Unlock()

	o.log.Info().
		Str("season", o.config.CurrentSeason).
		Dur("refresh_interval", o.config.RefreshInterval).
		Dur("stale_after", o.config.StaleGameAfter).
		Msg("Scheduler orchestrator starting")

	go func() {
		defer o.wg.Done()
		o.runRefresh(ctx)
	}()

	<-ctx.Done()
	o.wg.Wait()
	o.log.Info().Msg("Scheduler orchestrator stopping...")
}

// runRefresh finalises stale games then rebuilds cached tables on every tick
func (o *Orchestrator) runRefresh(ctx context.Context) {
	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	o.tick(ctx, &consecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			o.log.Info().Msg("→ View refresh stopped")
			return
		case <-ticker.C:
			o.tick(ctx, &consecutiveErrors)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context, consecutiveErrors *int) {
	if o.games != nil && o.config.StaleGameAfter > 0 {
		n, err := o.games.CleanupStaleGames(ctx, o.config.StaleGameAfter)
		if err != nil {
			o.log.Warn().Err(err).Msg("stale game cleanup failed")
		} else if n > 0 {
			o.log.Info().Int64("games", n).Msg("✓ Finalised stale games")
		}
	}

	if err := o.refreshWithRetry(ctx); err != nil {
		*consecutiveErrors++
		o.log.Error().Err(err).
			Int("attempts", o.config.MaxRetries).
			Int("consecutive_errors", *consecutiveErrors).
			Msg("❌ View refresh failed")
		return
	}
	*consecutiveErrors = 0
}

// refreshWithRetry refreshes the season views, retrying with a fixed delay
func (o *Orchestrator) refreshWithRetry(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		err = o.views.Refresh(ctx, o.config.CurrentSeason)
		if err == nil {
			return nil
		}

		o.log.Warn().Err(err).Int("attempt", attempt).Int("max", o.config.MaxRetries).Msg("⚠️  Refresh attempt failed")

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return err
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	o.wg.Wait()
	o.log.Info().Msg("✓ Scheduler orchestrator stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"refresh_interval": o.config.RefreshInterval.String(),
		"stale_game_after": o.config.StaleGameAfter.String(),
		"current_season":   o.config.CurrentSeason,
	}
}
