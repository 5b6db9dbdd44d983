package repository

import (
	"context"
	"fmt"

	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RatingHistoryRepository persists the append-only rating ledgers. Rows
// are insert-only; the latest rating per entity is reconstructed in SQL
// with the same greatest-(season, week) semantics the in-memory ledger
// uses, so a restore from Postgres matches a live store exactly.
type RatingHistoryRepository struct {
	db *Database
}

// AppendBatch inserts a batch of ledger records in one round trip
func (r *RatingHistoryRepository) AppendBatch(ctx context.Context, records []models.RatingRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO rating_history (season, week, entity_id, entity_type, position, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, rec.Season, rec.Week, rec.EntityID, string(rec.EntityType), string(rec.Position), rec.Rating)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			metrics.RecordDBQuery("insert", "rating_history", "error")
			return fmt.Errorf("failed to append rating records: %w", err)
		}
	}
	metrics.RecordDBQuery("insert", "rating_history", "success")

	log.Debug().
		Int("count", len(records)).
		Msg("Rating records appended")

	return nil
}

// LatestPerEntity retrieves the most recent rating record for every
// entity of the given type
func (r *RatingHistoryRepository) LatestPerEntity(ctx context.Context, entityType models.EntityType) ([]models.RatingRecord, error) {
	query := `
		SELECT DISTINCT ON (entity_id)
		       season, week, entity_id, entity_type, position, rating
		FROM rating_history
		WHERE entity_type = $1
		ORDER BY entity_id, season DESC, week DESC, id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ratings: %w", err)
	}
	defer rows.Close()

	var records []models.RatingRecord
	for rows.Next() {
		var rec models.RatingRecord
		err := rows.Scan(&rec.Season, &rec.Week, &rec.EntityID, &rec.EntityType, &rec.Position, &rec.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating records: %w", err)
	}

	return records, nil
}

// History retrieves the full time-ordered rating history for one entity
func (r *RatingHistoryRepository) History(ctx context.Context, entityID string) ([]models.RatingRecord, error) {
	query := `
		SELECT season, week, entity_id, entity_type, position, rating
		FROM rating_history
		WHERE entity_id = $1
		ORDER BY season, week, id
	`

	rows, err := r.db.Pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var records []models.RatingRecord
	for rows.Next() {
		var rec models.RatingRecord
		err := rows.Scan(&rec.Season, &rec.Week, &rec.EntityID, &rec.EntityType, &rec.Position, &rec.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating records: %w", err)
	}

	return records, nil
}

// Count returns the number of ledger rows for an entity type
func (r *RatingHistoryRepository) Count(ctx context.Context, entityType models.EntityType) (int, error) {
	query := `SELECT COUNT(*) FROM rating_history WHERE entity_type = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, string(entityType)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rating records: %w", err)
	}

	return count, nil
}
