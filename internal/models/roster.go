package models

// RosterEntry is one player's participation record for one game and one
// team. PerformanceScore is produced by the upstream evaluator on a 0-1
// scale where 0.5 means exactly expected performance.
type RosterEntry struct {
	GameID           int      `db:"game_id" json:"game_id"`
	TeamID           string   `db:"team_id" json:"team_id"`
	PlayerID         string   `db:"player_id" json:"player_id"`
	Position         Position `db:"position" json:"position"`
	SnapShare        float64  `db:"snap_share" json:"snap_share"`
	PerformanceScore float64  `db:"performance_score" json:"performance_score"`
}

// RosterSlot is the projection of a RosterEntry used when aggregating a
// roster's player ratings into a team adjustment.
type RosterSlot struct {
	PlayerID  string
	Position  Position
	SnapShare float64
}

// PlayerInfo is the per-player metadata cache kept alongside the rating
// map. It is a materialized view over the ledger, never the source of
// truth, and is rebuilt on restore.
type PlayerInfo struct {
	Position   Position
	Games      int
	LastSeason int
	LastWeek   int
	HasPlayed  bool
}
