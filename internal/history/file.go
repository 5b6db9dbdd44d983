// Package history persists rating ledgers as tabular snapshot files, one
// per store, and replays them on startup. A missing or unreadable file is
// treated as "no prior history": the store starts cold and the condition
// is logged, never fatal.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fightiq/ratings/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	// TeamHistoryFile holds season,week,team_id,rating rows.
	TeamHistoryFile = "team_elo_history.csv"
	// PlayerHistoryFile holds season,week,player_id,position,rating rows.
	PlayerHistoryFile = "player_elo_history.csv"
)

var (
	teamHeader   = []string{"season", "week", "team_id", "rating"}
	playerHeader = []string{"season", "week", "player_id", "position", "rating"}
)

// Store reads and writes snapshot files under a single directory.
type Store struct {
	dir string
}

// NewStore creates the snapshot directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveTeamHistory writes the full team ledger, replacing any prior file.
func (s *Store) SaveTeamHistory(records []models.RatingRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.Season),
			strconv.Itoa(rec.Week),
			rec.EntityID,
			strconv.FormatFloat(rec.Rating, 'g', -1, 64),
		})
	}
	return s.write(TeamHistoryFile, teamHeader, rows)
}

// SavePlayerHistory writes the full player ledger, replacing any prior file.
func (s *Store) SavePlayerHistory(records []models.RatingRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.Season),
			strconv.Itoa(rec.Week),
			rec.EntityID,
			string(rec.Position),
			strconv.FormatFloat(rec.Rating, 'g', -1, 64),
		})
	}
	return s.write(PlayerHistoryFile, playerHeader, rows)
}

func (s *Store) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)

	// Write to a temp file and rename so a crash mid-write never leaves
	// a truncated snapshot behind.
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	log.Info().
		Str("file", path).
		Int("records", len(rows)).
		Msg("Rating history snapshot saved")

	return nil
}

// LoadTeamHistory reads the team snapshot. A missing file returns an
// empty slice and no error.
func (s *Store) LoadTeamHistory() ([]models.RatingRecord, error) {
	rows, ok, err := s.read(TeamHistoryFile, len(teamHeader))
	if err != nil || !ok {
		return nil, err
	}

	records := make([]models.RatingRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := parseRow(row[0], row[1], row[2], "", row[3], models.EntityTeam)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadPlayerHistory reads the player snapshot. A missing file returns an
// empty slice and no error.
func (s *Store) LoadPlayerHistory() ([]models.RatingRecord, error) {
	rows, ok, err := s.read(PlayerHistoryFile, len(playerHeader))
	if err != nil || !ok {
		return nil, err
	}

	records := make([]models.RatingRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := parseRow(row[0], row[1], row[2], row[3], row[4], models.EntityPlayer)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) read(name string, fields int) ([][]string, bool, error) {
	path := filepath.Join(s.dir, name)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Warn().Str("file", path).Msg("No history snapshot found, starting cold")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	rows, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	if len(rows) == 0 {
		return nil, true, nil
	}
	// Drop the header row
	return rows[1:], true, nil
}

func parseRow(season, week, entityID, position, rating string, entityType models.EntityType) (models.RatingRecord, error) {
	s, err := strconv.Atoi(season)
	if err != nil {
		return models.RatingRecord{}, fmt.Errorf("bad season %q: %w", season, err)
	}
	w, err := strconv.Atoi(week)
	if err != nil {
		return models.RatingRecord{}, fmt.Errorf("bad week %q: %w", week, err)
	}
	r, err := strconv.ParseFloat(rating, 64)
	if err != nil {
		return models.RatingRecord{}, fmt.Errorf("bad rating %q: %w", rating, err)
	}

	rec := models.RatingRecord{
		Season:     s,
		Week:       w,
		EntityID:   entityID,
		EntityType: entityType,
		Rating:     r,
	}
	if position != "" {
		rec.Position = models.ParsePosition(position)
	}
	return rec, nil
}
