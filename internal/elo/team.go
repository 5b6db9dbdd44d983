package elo

import (
	"math"
	"sync"

	"fightiq/ratings/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamConfig holds the team Elo parameters. Built once by the host from
// the environment and passed in; the store never reads config itself.
type TeamConfig struct {
	BaseRating        float64 // initial and reversion target, typically 1500
	KFactor           float64 // base K before margin and playoff scaling
	HomeAdvantage     float64 // rating points added to the home side's expectation
	ReversionFactor   float64 // fraction pulled back to base between seasons
	PlayoffMultiplier float64 // K multiplier for playoff games
}

// DefaultTeamConfig mirrors the production parameter set.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		BaseRating:        1500,
		KFactor:           20,
		HomeAdvantage:     50,
		ReversionFactor:   0.33,
		PlayoffMultiplier: 1.2,
	}
}

// TeamStore maintains Elo ratings for teams. Updates are zero-sum per
// game: home advantage shifts the expectation only, never the stored
// rating. A single writer mutex guards the update path so readers never
// observe a half-applied game.
type TeamStore struct {
	mu      sync.Mutex
	cfg     TeamConfig
	ratings map[string]float64
	ledger  *Ledger
}

// NewTeamStore creates an empty store with the given parameters.
func NewTeamStore(cfg TeamConfig) *TeamStore {
	return &TeamStore{
		cfg:     cfg,
		ratings: make(map[string]float64),
		ledger:  NewLedger(),
	}
}

// Initialize sets every listed team to the base rating if not already
// present. Idempotent; never overwrites an existing rating.
func (s *TeamStore) Initialize(teamIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, id := range teamIDs {
		if _, ok := s.ratings[id]; !ok {
			s.ratings[id] = s.cfg.BaseRating
			added++
		}
	}

	log.Info().
		Int("teams", added).
		Float64("base_rating", s.cfg.BaseRating).
		Msg("Teams initialized")
}

// Rating returns the current rating for a team, or the base rating if
// the team has never been seen. Never errors.
func (s *TeamStore) Rating(teamID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rating(teamID)
}

func (s *TeamStore) rating(teamID string) float64 {
	if r, ok := s.ratings[teamID]; ok {
		return r
	}
	return s.cfg.BaseRating
}

// expectedScore is the logistic Elo expectation for side A against side
// B. expectedScore(a,b) + expectedScore(b,a) == 1 for all finite inputs,
// which the zero-sum update below depends on.
func expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// movMultiplier dampens blowouts: ln(margin+1), zero only for a tie.
func movMultiplier(margin int) float64 {
	if margin < 0 {
		margin = -margin
	}
	return math.Log(float64(margin) + 1)
}

// Update applies one finalized game and returns the new (home, away)
// ratings. Home advantage enters the expectation only, so the two deltas
// sum to exactly zero. Both ratings and both ledger records become
// visible atomically with respect to readers.
//
// Games must be fed in non-decreasing (season, week) order; out-of-order
// insertion breaks ledger restore and is a caller contract violation.
func (s *TeamStore) Update(game *models.GameOutcome) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	homeRating := s.rating(game.HomeTeam)
	awayRating := s.rating(game.AwayTeam)

	homeExpected := expectedScore(homeRating+s.cfg.HomeAdvantage, awayRating)

	var homeResult float64
	switch {
	case *game.HomeScore > *game.AwayScore:
		homeResult = 1.0
	case *game.HomeScore < *game.AwayScore:
		homeResult = 0.0
	default:
		homeResult = 0.5
	}
	playoffMult := 1.0
	if game.IsPlayoff {
		playoffMult = s.cfg.PlayoffMultiplier
	}

	k := s.cfg.KFactor * movMultiplier(game.Margin()) * playoffMult

	// Ratings are exactly zero-sum per game: with S_h+S_a=1 and
	// E_h+E_a=1 the away delta is the negated home delta, so compute it
	// that way rather than rounding through a second subtraction.
	homeChange := k * (homeResult - homeExpected)
	awayChange := -homeChange

	newHome := homeRating + homeChange
	newAway := awayRating + awayChange

	s.ratings[game.HomeTeam] = newHome
	s.ratings[game.AwayTeam] = newAway

	s.ledger.Append(models.RatingRecord{
		Season:     game.Season,
		Week:       game.Week,
		EntityID:   game.HomeTeam,
		EntityType: models.EntityTeam,
		Rating:     newHome,
	})
	s.ledger.Append(models.RatingRecord{
		Season:     game.Season,
		Week:       game.Week,
		EntityID:   game.AwayTeam,
		EntityType: models.EntityTeam,
		Rating:     newAway,
	})

	log.Debug().
		Str("home", game.HomeTeam).
		Str("away", game.AwayTeam).
		Float64("home_rating", newHome).
		Float64("away_rating", newAway).
		Float64("home_change", homeChange).
		Msg("Team ratings updated")

	return newHome, newAway
}

// RegressToMean pulls every rating toward the base value by the
// configured reversion fraction, modeling roster turnover. Call exactly
// once per season transition, before any games of the new season;
// mid-season or repeated calls compound incorrectly and are not guarded
// here.
func (s *TeamStore) RegressToMean() {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.cfg.ReversionFactor
	for id, r := range s.ratings {
		s.ratings[id] = r*(1-f) + s.cfg.BaseRating*f
	}

	log.Info().
		Float64("reversion_factor", f).
		Int("teams", len(s.ratings)).
		Msg("Applied season mean reversion")
}

// MatchupProbability returns (home win prob, away win prob) for an
// upcoming game, applying home advantage only off neutral sites.
func (s *TeamStore) MatchupProbability(homeTeam, awayTeam string, neutralSite bool) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	homeRating := s.rating(homeTeam)
	awayRating := s.rating(awayTeam)

	if !neutralSite {
		homeRating += s.cfg.HomeAdvantage
	}

	homeProb := expectedScore(homeRating, awayRating)
	return homeProb, 1.0 - homeProb
}

// Ledger returns the store's append-only history.
func (s *TeamStore) Ledger() *Ledger {
	return s.ledger
}

// Restore replays persisted history into the live rating map via
// latest-record-per-entity, then re-seeds the ledger with the full
// record set so subsequent appends extend the original history.
func (s *TeamStore) Restore(records []models.RatingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = NewLedger()
	for _, rec := range records {
		s.ledger.Append(rec)
	}
	for id, rec := range s.ledger.LatestPerEntity() {
		s.ratings[id] = rec.Rating
	}

	log.Info().
		Int("records", len(records)).
		Int("teams", len(s.ratings)).
		Msg("Team rating history restored")
}
