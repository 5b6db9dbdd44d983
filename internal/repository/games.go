package repository

import (
	"context"
	"fmt"

	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game feed database operations. The games table
// is the chronologically-ordered input feed for the rating engine; rows
// arrive from the external ingestion collaborator and are flagged rated
// once the engine has consumed them.
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a finalized game result
func (r *GameRepository) Upsert(ctx context.Context, game *models.GameOutcome) error {
	query := `
		INSERT INTO games (
			game_id, season, week, home_team, away_team,
			home_score, away_score, is_playoff, game_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			is_playoff = EXCLUDED.is_playoff,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		game.GameID, game.Season, game.Week, game.HomeTeam, game.AwayTeam,
		game.HomeScore, game.AwayScore, game.IsPlayoff, game.GameDate,
	)

	if err != nil {
		metrics.RecordDBQuery("upsert", "games", "error")
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	metrics.RecordDBQuery("upsert", "games", "success")

	log.Debug().
		Int("game_id", game.GameID).
		Int("season", game.Season).
		Int("week", game.Week).
		Msg("Game upserted")

	return nil
}

// GetByGameID retrieves a game by its feed identifier
func (r *GameRepository) GetByGameID(ctx context.Context, gameID int) (*models.GameOutcome, error) {
	query := `
		SELECT game_id, season, week, home_team, away_team,
		       home_score, away_score, is_playoff, game_date
		FROM games
		WHERE game_id = $1
	`

	var game models.GameOutcome
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.GameID, &game.Season, &game.Week, &game.HomeTeam, &game.AwayTeam,
		&game.HomeScore, &game.AwayScore, &game.IsPlayoff, &game.GameDate,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: game_id=%d", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListUnrated retrieves finalized games the rating engine has not yet
// consumed, in strict chronological (season, week) order. Ordering
// within a week is arbitrary; same-week games never reference each
// other's outcome.
func (r *GameRepository) ListUnrated(ctx context.Context) ([]*models.GameOutcome, error) {
	query := `
		SELECT game_id, season, week, home_team, away_team,
		       home_score, away_score, is_playoff, game_date
		FROM games
		WHERE rated = FALSE
		ORDER BY season, week, game_date, game_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unrated games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameOutcome
	for rows.Next() {
		var game models.GameOutcome
		err := rows.Scan(
			&game.GameID, &game.Season, &game.Week, &game.HomeTeam, &game.AwayTeam,
			&game.HomeScore, &game.AwayScore, &game.IsPlayoff, &game.GameDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// MarkRated flags games as consumed by the rating engine
func (r *GameRepository) MarkRated(ctx context.Context, gameIDs []int) error {
	if len(gameIDs) == 0 {
		return nil
	}

	query := `UPDATE games SET rated = TRUE, updated_at = NOW() WHERE game_id = ANY($1)`

	result, err := r.db.Pool.Exec(ctx, query, gameIDs)
	if err != nil {
		return fmt.Errorf("failed to mark games rated: %w", err)
	}

	log.Debug().
		Int64("count", result.RowsAffected()).
		Msg("Games marked rated")

	return nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
