package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fightiq/ratings/internal/cache"
	"fightiq/ratings/internal/config"
	"fightiq/ratings/internal/elo"
	"fightiq/ratings/internal/history"
	"fightiq/ratings/internal/ingest"
	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"
	"fightiq/ratings/internal/repository"
	"fightiq/ratings/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting FightIQ Rating Engine Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize Redis cache
	ratingCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		ratingCache = nil
	} else {
		defer ratingCache.Close()
	}

	// Initialize snapshot store
	snapshots, err := history.NewStore(cfg.HistoryDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history store")
	}

	// Build the rating stores and restore prior history
	teamCfg := cfg.TeamElo()
	playerCfg := cfg.PlayerElo()
	teams := elo.NewTeamStore(teamCfg)
	players := elo.NewPlayerStore(playerCfg)

	restoreStores(ctx, db, snapshots, teams, players)

	processor := ingest.NewProcessor(teams, players, teamCfg, playerCfg)
	processor.MarkRestored()

	// Query facade for read-only consumers
	query := elo.NewQuery(teams, players)

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort), query, db)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, db, snapshots, ratingCache, processor, teams, players)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Process whatever is already waiting in the feed before the first tick
	log.Info().Msg("Running initial feed batch...")
	if err := sched.ProcessFeed(ctx); err != nil {
		log.Error().Err(err).Msg("Initial feed batch failed, continuing anyway...")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// restoreStores rebuilds both stores from persisted history. The disk
// snapshot carries the full ledger and is preferred; if it is absent the
// latest-per-entity rows in Postgres seed the live ratings instead. No
// history anywhere means a cold start, which is not an error.
func restoreStores(ctx context.Context, db *repository.Database, snapshots *history.Store, teams *elo.TeamStore, players *elo.PlayerStore) {
	teamRecords, err := snapshots.LoadTeamHistory()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load team history snapshot, starting cold")
		metrics.RecordSnapshot("load", "error")
		teamRecords = nil
	}
	if len(teamRecords) == 0 {
		if teamRecords, err = db.Ratings.LatestPerEntity(ctx, models.EntityTeam); err != nil {
			log.Warn().Err(err).Msg("Failed to load team ratings from database, starting cold")
			teamRecords = nil
		}
	}
	if len(teamRecords) > 0 {
		teams.Restore(teamRecords)
		metrics.RecordSnapshot("load", "success")
	}

	playerRecords, err := snapshots.LoadPlayerHistory()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load player history snapshot, starting cold")
		metrics.RecordSnapshot("load", "error")
		playerRecords = nil
	}
	if len(playerRecords) == 0 {
		if playerRecords, err = db.Ratings.LatestPerEntity(ctx, models.EntityPlayer); err != nil {
			log.Warn().Err(err).Msg("Failed to load player ratings from database, starting cold")
			playerRecords = nil
		}
	}
	if len(playerRecords) > 0 {
		players.Restore(playerRecords)
		metrics.RecordSnapshot("load", "success")
	}
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server along
// with a read-only rating lookup for debugging
func startMetricsServer(port string, query *elo.Query, db *repository.Database) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Rating lookups; reads never block an in-flight update batch
	http.HandleFunc("/ratings/team", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"team_id":%q,"rating":%g}`, id, query.TeamRating(id))
	})

	http.HandleFunc("/ratings/player", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"player_id":%q,"rating":%g}`, id, query.PlayerRating(id))
	})

	http.HandleFunc("/ratings/matchup", func(w http.ResponseWriter, r *http.Request) {
		home := r.URL.Query().Get("home")
		away := r.URL.Query().Get("away")
		if home == "" || away == "" {
			http.Error(w, "missing home or away", http.StatusBadRequest)
			return
		}
		neutral := r.URL.Query().Get("neutral") == "true"
		pHome, pAway := query.MatchupProbability(home, away, neutral)
		fmt.Fprintf(w, `{"home":%q,"away":%q,"home_prob":%g,"away_prob":%g}`, home, away, pHome, pAway)
	})

	http.HandleFunc("/ratings/adjustment", func(w http.ResponseWriter, r *http.Request) {
		teamID := r.URL.Query().Get("team")
		if teamID == "" {
			http.Error(w, "missing team", http.StatusBadRequest)
			return
		}
		entries, err := db.Rosters.LatestTeamRoster(r.Context(), teamID)
		if err != nil {
			log.Error().Err(err).Str("team_id", teamID).Msg("Failed to load latest roster")
			http.Error(w, "failed to load roster", http.StatusInternalServerError)
			return
		}
		slots := make([]models.RosterSlot, 0, len(entries))
		for _, entry := range entries {
			slots = append(slots, models.RosterSlot{
				PlayerID:  entry.PlayerID,
				Position:  entry.Position,
				SnapShare: entry.SnapShare,
			})
		}
		fmt.Fprintf(w, `{"team_id":%q,"adjustment":%g,"roster_size":%d}`, teamID, query.TeamAdjustment(slots), len(slots))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
