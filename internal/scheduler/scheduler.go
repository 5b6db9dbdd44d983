package scheduler

import (
	"context"
	"fmt"
	"time"

	"fightiq/ratings/internal/cache"
	"fightiq/ratings/internal/config"
	"fightiq/ratings/internal/elo"
	"fightiq/ratings/internal/history"
	"fightiq/ratings/internal/ingest"
	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages background tasks for the rating engine:
// - Poll the feed for newly finalized games and run them through the processor
// - Nightly snapshot of both rating ledgers to disk
type Scheduler struct {
	cfg       *config.Config
	db        *repository.Database
	snapshots *history.Store
	ratings   *cache.RedisCache // optional, may be nil
	processor *ingest.Processor
	teams     *elo.TeamStore
	players   *elo.PlayerStore
	cron      *cron.Cron
	ticker    *time.Ticker
	stopChan  chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	cfg *config.Config,
	db *repository.Database,
	snapshots *history.Store,
	ratings *cache.RedisCache,
	processor *ingest.Processor,
	teams *elo.TeamStore,
	players *elo.PlayerStore,
) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		db:        db,
		snapshots: snapshots,
		ratings:   ratings,
		processor: processor,
		teams:     teams,
		players:   players,
		cron:      cron.New(),
		stopChan:  make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Setup nightly snapshot cron job
	if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, func() {
		log.Info().Msg("Running nightly ledger snapshot...")
		s.saveSnapshots()
	}); err != nil {
		return fmt.Errorf("failed to schedule ledger snapshot: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.SnapshotCron).
		Msg("Nightly ledger snapshot scheduled")

	// Start feed polling ticker
	interval := time.Duration(s.cfg.FeedPollInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Feed polling started")

	go s.pollFeed(ctx)

	return nil
}

// Stop stops the scheduler and takes a final snapshot
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	s.saveSnapshots()
	log.Info().Msg("Scheduler stopped")
}

// pollFeed continuously polls for newly finalized games
func (s *Scheduler) pollFeed(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping feed polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping feed polling")
			return
		case <-s.ticker.C:
			if err := s.ProcessFeed(ctx); err != nil {
				log.Error().Err(err).Msg("Feed batch failed")
				metrics.RecordError("scheduler", "feed_batch")
			}
		}
	}
}

// ProcessFeed pulls every unrated finalized game, runs it and its roster
// through the processor in chronological order, then persists the new
// ledger records and marks the games consumed. Rating computation never
// interleaves with I/O: all updates happen first, persistence follows
// as a single batch.
func (s *Scheduler) ProcessFeed(ctx context.Context) error {
	start := time.Now()

	games, err := s.db.Games.ListUnrated(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unrated games: %w", err)
	}

	if len(games) == 0 {
		log.Debug().Msg("No unrated games found")
		return nil
	}

	log.Info().Int("count", len(games)).Msg("Processing unrated games")

	ratedIDs := make([]int, 0, len(games))
	for _, game := range games {
		roster, err := s.db.Rosters.ListByGame(ctx, game.GameID)
		if err != nil {
			return fmt.Errorf("failed to load roster for game %d: %w", game.GameID, err)
		}

		s.processor.ProcessGame(game, roster)
		ratedIDs = append(ratedIDs, game.GameID)
	}

	if err := s.flush(ctx, ratedIDs); err != nil {
		return err
	}

	metrics.RecordBatch(time.Since(start).Seconds(), true)
	log.Info().
		Int("games", len(games)).
		Dur("duration", time.Since(start)).
		Msg("Feed batch complete")

	return nil
}

// flush persists pending ledger records to Postgres, publishes latest
// ratings to the cache, and marks the batch's games rated.
func (s *Scheduler) flush(ctx context.Context, ratedIDs []int) error {
	teamRecords := s.processor.PendingTeamRecords()
	playerRecords := s.processor.PendingPlayerRecords()

	if err := s.db.Ratings.AppendBatch(ctx, teamRecords); err != nil {
		return fmt.Errorf("failed to persist team records: %w", err)
	}
	if err := s.db.Ratings.AppendBatch(ctx, playerRecords); err != nil {
		return fmt.Errorf("failed to persist player records: %w", err)
	}

	// Cache publication is best-effort; Postgres is the durable ledger
	if s.ratings != nil {
		if err := s.ratings.PublishBatch(ctx, teamRecords); err != nil {
			log.Warn().Err(err).Msg("Failed to publish team ratings to cache")
			metrics.RecordError("cache", "publish")
		}
		if err := s.ratings.PublishBatch(ctx, playerRecords); err != nil {
			log.Warn().Err(err).Msg("Failed to publish player ratings to cache")
			metrics.RecordError("cache", "publish")
		}
	}

	if err := s.db.Games.MarkRated(ctx, ratedIDs); err != nil {
		return fmt.Errorf("failed to mark games rated: %w", err)
	}

	return nil
}

// saveSnapshots writes both full ledgers to disk
func (s *Scheduler) saveSnapshots() {
	if err := s.snapshots.SaveTeamHistory(s.teams.Ledger().Records()); err != nil {
		log.Error().Err(err).Msg("Failed to save team history snapshot")
		metrics.RecordSnapshot("save", "error")
	} else {
		metrics.RecordSnapshot("save", "success")
	}

	if err := s.snapshots.SavePlayerHistory(s.players.Ledger().Records()); err != nil {
		log.Error().Err(err).Msg("Failed to save player history snapshot")
		metrics.RecordSnapshot("save", "error")
	} else {
		metrics.RecordSnapshot("save", "success")
	}
}
