package models

import "time"

// GameOutcome is a finalized game result from the ingestion feed.
// Scores are pointers because the upstream feed occasionally finalizes a
// game without posting scores; such games are skipped entirely.
type GameOutcome struct {
	GameID    int       `db:"game_id" json:"game_id"`
	Season    int       `db:"season" json:"season"`
	Week      int       `db:"week" json:"week"`
	HomeTeam  string    `db:"home_team" json:"home_team"`
	AwayTeam  string    `db:"away_team" json:"away_team"`
	HomeScore *int      `db:"home_score" json:"home_score,omitempty"`
	AwayScore *int      `db:"away_score" json:"away_score,omitempty"`
	IsPlayoff bool      `db:"is_playoff" json:"is_playoff"`
	GameDate  time.Time `db:"game_date" json:"game_date"`
}

// HasScores reports whether both scores are present. Games without both
// scores produce no rating change and no ledger records.
func (g *GameOutcome) HasScores() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Margin returns the absolute score differential. Callers must check
// HasScores first.
func (g *GameOutcome) Margin() int {
	m := *g.HomeScore - *g.AwayScore
	if m < 0 {
		m = -m
	}
	return m
}

// IsTie reports whether the game ended level.
func (g *GameOutcome) IsTie() bool {
	return g.HasScores() && *g.HomeScore == *g.AwayScore
}
