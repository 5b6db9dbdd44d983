// Package ingest drives the rating engine from the ordered game feed.
// The processor owns the sequencing rules the stores themselves leave to
// the caller: season-boundary mean reversion, weekly inactivity
// reversion, and the skip semantics for games without scores.
package ingest

import (
	"fightiq/ratings/internal/elo"
	"fightiq/ratings/internal/metrics"
	"fightiq/ratings/internal/models"

	"github.com/rs/zerolog/log"
)

// Processor feeds finalized games and their rosters through both rating
// stores in strict chronological order. It is single-threaded by
// contract; the stores' own locks make concurrent reads safe.
type Processor struct {
	teams   *elo.TeamStore
	players *elo.PlayerStore

	teamBase   float64
	playerBase float64

	seasonSeen bool
	season     int
	week       int

	flushedTeam   int
	flushedPlayer int
}

// NewProcessor wires the processor to the two stores. The base ratings
// are needed to map team strength onto the player scale when deriving
// opponent unit strength.
func NewProcessor(teams *elo.TeamStore, players *elo.PlayerStore, teamCfg elo.TeamConfig, playerCfg elo.PlayerConfig) *Processor {
	return &Processor{
		teams:      teams,
		players:    players,
		teamBase:   teamCfg.BaseRating,
		playerBase: playerCfg.BaseRating,
	}
}

// ProcessGame applies one finalized game and its roster entries. Games
// must arrive in non-decreasing (season, week) order; the processor
// applies season mean reversion on a season change and inactivity
// reversion on every week change, both before the game itself.
//
// Games missing either score are skipped entirely: no rating change, no
// ledger records, no reversion trigger.
func (p *Processor) ProcessGame(game *models.GameOutcome, roster []*models.RosterEntry) {
	if !game.HasScores() {
		log.Warn().
			Int("game_id", game.GameID).
			Int("season", game.Season).
			Int("week", game.Week).
			Msg("Game missing scores, skipped")
		metrics.RecordGameProcessed("skipped")
		return
	}

	p.advanceClock(game.Season, game.Week)

	// Capture pre-game team strength for the player updates; players
	// face the opponent as it stood going into the game.
	homeStrength := p.opponentStrength(game.HomeTeam)
	awayStrength := p.opponentStrength(game.AwayTeam)

	p.teams.Update(game)
	metrics.RecordRatingUpdate(string(models.EntityTeam), 2)

	for _, entry := range roster {
		opponent := homeStrength
		if entry.TeamID == game.HomeTeam {
			opponent = awayStrength
		}

		p.players.InitializePlayer(entry.PlayerID, entry.Position)
		p.players.Update(entry.PlayerID, opponent, entry.PerformanceScore, entry.SnapShare, game.Season, game.Week)
	}
	if len(roster) > 0 {
		metrics.RecordRatingUpdate(string(models.EntityPlayer), len(roster))
		metrics.RosterEntriesProcessedTotal.Add(float64(len(roster)))
	}

	metrics.RecordGameProcessed("rated")
	metrics.UpdateLedgerSizes(p.teams.Ledger().Len(), p.players.Ledger().Len())
}

// opponentStrength maps a team's current rating onto the player rating
// scale, preserving the delta from base.
func (p *Processor) opponentStrength(teamID string) float64 {
	return p.playerBase + (p.teams.Rating(teamID) - p.teamBase)
}

// advanceClock applies the reversion policy when the feed crosses a
// week or season boundary.
func (p *Processor) advanceClock(season, week int) {
	if !p.seasonSeen {
		p.seasonSeen = true
		p.season = season
		p.week = week
		return
	}

	if season != p.season {
		log.Info().
			Int("from_season", p.season).
			Int("to_season", season).
			Msg("Season transition, regressing team ratings to mean")
		p.teams.RegressToMean()
		metrics.RecordReversion("season")
	}

	if season != p.season || week != p.week {
		p.players.RegressInactive(season, week)
		metrics.RecordReversion("inactivity")
	}

	p.season = season
	p.week = week
}

// PendingTeamRecords returns ledger records appended since the last
// call, for flushing to persistence.
func (p *Processor) PendingTeamRecords() []models.RatingRecord {
	records := p.teams.Ledger().Records()
	pending := records[p.flushedTeam:]
	p.flushedTeam = len(records)
	return pending
}

// PendingPlayerRecords returns player ledger records appended since the
// last call.
func (p *Processor) PendingPlayerRecords() []models.RatingRecord {
	records := p.players.Ledger().Records()
	pending := records[p.flushedPlayer:]
	p.flushedPlayer = len(records)
	return pending
}

// MarkRestored fast-forwards the flush offsets past restored history so
// a restart does not re-persist records that are already durable.
func (p *Processor) MarkRestored() {
	p.flushedTeam = p.teams.Ledger().Len()
	p.flushedPlayer = p.players.Ledger().Len()
}
