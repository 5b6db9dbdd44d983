package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rating engine

var (
	// Feed metrics
	GamesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_games_processed_total",
			Help: "Total number of games consumed from the feed",
		},
		[]string{"status"}, // rated | skipped
	)

	RosterEntriesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fightiq_roster_entries_processed_total",
			Help: "Total number of roster entries fed to the player store",
		},
	)

	// Rating engine metrics
	RatingUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_rating_updates_total",
			Help: "Total number of rating updates applied",
		},
		[]string{"entity_type"},
	)

	ReversionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_reversion_runs_total",
			Help: "Total number of mean reversion passes",
		},
		[]string{"kind"}, // season | inactivity
	)

	LedgerSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fightiq_ledger_records",
			Help: "Number of records in each in-memory ledger",
		},
		[]string{"entity_type"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fightiq_batch_duration_seconds",
			Help:    "Duration of feed batch processing in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	// Persistence metrics
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_snapshots_total",
			Help: "Total number of history snapshot operations",
		},
		[]string{"operation", "status"},
	)

	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fightiq_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fightiq_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fightiq_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fightiq_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulBatch = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fightiq_last_successful_batch_timestamp",
			Help: "Timestamp of the last successfully processed feed batch",
		},
	)
)

// RecordGameProcessed records one game consumed from the feed
func RecordGameProcessed(status string) {
	GamesProcessedTotal.WithLabelValues(status).Inc()
}

// RecordRatingUpdate records rating updates for an entity type
func RecordRatingUpdate(entityType string, count int) {
	RatingUpdatesTotal.WithLabelValues(entityType).Add(float64(count))
}

// RecordReversion records a mean reversion pass
func RecordReversion(kind string) {
	ReversionRunsTotal.WithLabelValues(kind).Inc()
}

// RecordSnapshot records a snapshot save or load
func RecordSnapshot(operation, status string) {
	SnapshotsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordBatch records a completed feed batch
func RecordBatch(duration float64, success bool) {
	BatchDuration.Observe(duration)
	if success {
		LastSuccessfulBatch.SetToCurrentTime()
	}
}

// UpdateLedgerSizes updates the ledger size gauges
func UpdateLedgerSizes(teamRecords, playerRecords int) {
	LedgerSize.WithLabelValues("team").Set(float64(teamRecords))
	LedgerSize.WithLabelValues("player").Set(float64(playerRecords))
}
