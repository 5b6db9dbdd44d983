package repository

import (
	"context"
	"fmt"

	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"

	"github.com/rs/zerolog/log"
)

// RosterRepository handles per-game player participation records,
// supplied by the external roster/performance evaluator and keyed by
// (game_id, team_id, player_id).
type RosterRepository struct {
	db *Database
}

// Upsert inserts or updates a roster entry
func (r *RosterRepository) Upsert(ctx context.Context, entry *models.RosterEntry) error {
	query := `
		INSERT INTO roster_entries (
			game_id, team_id, player_id, position, snap_share, performance_score
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, team_id, player_id) DO UPDATE SET
			position = EXCLUDED.position,
			snap_share = EXCLUDED.snap_share,
			performance_score = EXCLUDED.performance_score,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		entry.GameID, entry.TeamID, entry.PlayerID,
		string(entry.Position), entry.SnapShare, entry.PerformanceScore,
	)

	if err != nil {
		metrics.RecordDBQuery("upsert", "roster_entries", "error")
		return fmt.Errorf("failed to upsert roster entry: %w", err)
	}
	metrics.RecordDBQuery("upsert", "roster_entries", "success")

	log.Debug().
		Int("game_id", entry.GameID).
		Str("player_id", entry.PlayerID).
		Msg("Roster entry upserted")

	return nil
}

// ListByGame retrieves all roster entries for one game, grouped by team
func (r *RosterRepository) ListByGame(ctx context.Context, gameID int) ([]*models.RosterEntry, error) {
	query := `
		SELECT game_id, team_id, player_id, position, snap_share, performance_score
		FROM roster_entries
		WHERE game_id = $1
		ORDER BY team_id, player_id
	`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		err := rows.Scan(
			&entry.GameID, &entry.TeamID, &entry.PlayerID,
			&entry.Position, &entry.SnapShare, &entry.PerformanceScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster entries: %w", err)
	}

	return entries, nil
}

// LatestTeamRoster retrieves a team's most recent roster, used when
// building the roster slots for a team adjustment query
func (r *RosterRepository) LatestTeamRoster(ctx context.Context, teamID string) ([]*models.RosterEntry, error) {
	query := `
		SELECT re.game_id, re.team_id, re.player_id, re.position, re.snap_share, re.performance_score
		FROM roster_entries re
		WHERE re.team_id = $1
		  AND re.game_id = (
			SELECT MAX(game_id) FROM roster_entries WHERE team_id = $1
		  )
		ORDER BY re.player_id
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest roster: %w", err)
	}
	defer rows.Close()

	var entries []*models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		err := rows.Scan(
			&entry.GameID, &entry.TeamID, &entry.PlayerID,
			&entry.Position, &entry.SnapShare, &entry.PerformanceScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster entries: %w", err)
	}

	return entries, nil
}
