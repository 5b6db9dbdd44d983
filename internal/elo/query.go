package elo

import "fightiq/ratings/internal/models"

// Query is the read surface handed to feature-builders and inference
// pipelines. All methods are side-effect-free and safe to call while the
// stores are being updated; the store locks guarantee a reader never
// observes a partially applied game.
type Query struct {
	teams   *TeamStore
	players *PlayerStore
}

// NewQuery wraps the two stores in a read-only facade.
func NewQuery(teams *TeamStore, players *PlayerStore) *Query {
	return &Query{teams: teams, players: players}
}

// TeamRating returns the current team rating, base if unseen.
func (q *Query) TeamRating(teamID string) float64 {
	return q.teams.Rating(teamID)
}

// PlayerRating returns the current player rating, base if unseen.
func (q *Query) PlayerRating(playerID string) float64 {
	return q.players.Rating(playerID)
}

// MatchupProbability returns (home, away) win probabilities for an
// upcoming game.
func (q *Query) MatchupProbability(homeTeam, awayTeam string, neutralSite bool) (float64, float64) {
	return q.teams.MatchupProbability(homeTeam, awayTeam, neutralSite)
}

// TeamAdjustment aggregates a roster's player ratings into the bounded
// scalar modifier applied to the team's Elo for matchup prediction.
func (q *Query) TeamAdjustment(roster []models.RosterSlot) float64 {
	return q.players.TeamAdjustment(roster)
}
