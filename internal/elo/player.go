package elo

import (
	"sync"

	"fightiq/ratings/internal/models"

	"github.com/rs/zerolog/log"
)

// PlayerConfig holds the player Elo parameters. K-factors and position
// weights are hand-tuned configuration, not learned values.
type PlayerConfig struct {
	BaseRating      float64
	ReversionFactor float64
	// KFactors is the per-position base K, larger for skill positions.
	KFactors map[models.Position]float64
	// DefaultKFactor applies to positions absent from KFactors.
	DefaultKFactor float64
	// PositionWeights drive roster aggregation and sum to 1.0.
	PositionWeights map[models.Position]float64
	// AdjustmentScale and AdjustmentClamp bound the aggregated team
	// adjustment so no single roster dominates the macro prediction.
	AdjustmentScale float64
	AdjustmentClamp float64
	// WeeksPerSeason converts cross-season gaps into elapsed weeks.
	WeeksPerSeason int
	// InactivityWeeks is the minimum gap before reversion applies.
	InactivityWeeks int
}

// DefaultPlayerConfig mirrors the production parameter set.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		BaseRating:      1000,
		ReversionFactor: 0.25,
		KFactors: map[models.Position]float64{
			models.PositionQB: 32,
			models.PositionRB: 20,
			models.PositionWR: 20,
			models.PositionTE: 18,
			models.PositionOL: 15,
			models.PositionDL: 15,
			models.PositionLB: 18,
			models.PositionCB: 20,
			models.PositionS:  18,
		},
		DefaultKFactor: 20,
		PositionWeights: map[models.Position]float64{
			models.PositionQB: 0.25,
			models.PositionRB: 0.08,
			models.PositionWR: 0.12,
			models.PositionTE: 0.05,
			models.PositionOL: 0.15,
			models.PositionDL: 0.12,
			models.PositionLB: 0.10,
			models.PositionCB: 0.08,
			models.PositionS:  0.05,
		},
		AdjustmentScale: 0.1,
		AdjustmentClamp: 100,
		WeeksPerSeason:  18,
		InactivityWeeks: 4,
	}
}

// PlayerStore maintains Elo ratings for individual players. Unlike the
// team store, updates are single-sided: performance is measured against
// an externally supplied opponent unit strength, so there is no zero-sum
// pairing between players.
type PlayerStore struct {
	mu      sync.Mutex
	cfg     PlayerConfig
	ratings map[string]float64
	info    map[string]*models.PlayerInfo
	ledger  *Ledger
}

// NewPlayerStore creates an empty store with the given parameters.
func NewPlayerStore(cfg PlayerConfig) *PlayerStore {
	return &PlayerStore{
		cfg:     cfg,
		ratings: make(map[string]float64),
		info:    make(map[string]*models.PlayerInfo),
		ledger:  NewLedger(),
	}
}

// InitializePlayer sets base rating and zeroed metadata for an unseen
// player. Idempotent; a player's position is fixed at first observation.
func (s *PlayerStore) InitializePlayer(playerID string, position models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializePlayer(playerID, position)
}

func (s *PlayerStore) initializePlayer(playerID string, position models.Position) {
	if _, ok := s.ratings[playerID]; ok {
		return
	}
	s.ratings[playerID] = s.cfg.BaseRating
	s.info[playerID] = &models.PlayerInfo{Position: position}
}

// Rating returns the current rating for a player, or the base rating if
// the player has never been seen.
func (s *PlayerStore) Rating(playerID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rating(playerID)
}

func (s *PlayerStore) rating(playerID string) float64 {
	if r, ok := s.ratings[playerID]; ok {
		return r
	}
	return s.cfg.BaseRating
}

// kFactor is the position-specific base K scaled by snap share.
func (s *PlayerStore) kFactor(playerID string, snapShare float64) float64 {
	base := s.cfg.DefaultKFactor
	if info, ok := s.info[playerID]; ok {
		if k, ok := s.cfg.KFactors[info.Position]; ok {
			base = k
		}
	}
	return base * snapShare
}

// Update applies one game's performance for a player and returns the new
// rating. Expected performance uses the logistic Elo curve against the
// opponent unit strength; the delta is K(position, snap share) times the
// gap between actual and expected.
func (s *PlayerStore) Update(playerID string, opponentStrength, performanceScore, snapShare float64, season, week int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.rating(playerID)
	k := s.kFactor(playerID, snapShare)

	expected := expectedScore(current, opponentStrength)
	newRating := current + k*(performanceScore-expected)
	s.ratings[playerID] = newRating

	position := models.PositionUnknown
	if info, ok := s.info[playerID]; ok {
		info.Games++
		info.LastSeason = season
		info.LastWeek = week
		info.HasPlayed = true
		position = info.Position
	}

	s.ledger.Append(models.RatingRecord{
		Season:     season,
		Week:       week,
		EntityID:   playerID,
		EntityType: models.EntityPlayer,
		Position:   position,
		Rating:     newRating,
	})

	log.Debug().
		Str("player", playerID).
		Float64("rating", newRating).
		Float64("performance", performanceScore).
		Float64("snap_share", snapShare).
		Msg("Player rating updated")

	return newRating
}

// RegressInactive pulls players who have not been updated for the
// configured number of weeks back toward the base rating. Players who
// have never been updated are left untouched.
func (s *PlayerStore) RegressInactive(currentSeason, currentWeek int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.cfg.ReversionFactor
	regressed := 0
	for playerID, info := range s.info {
		if !info.HasPlayed {
			continue
		}

		weeksInactive := currentWeek - info.LastWeek
		if currentSeason > info.LastSeason {
			weeksInactive = (currentSeason-info.LastSeason)*s.cfg.WeeksPerSeason + currentWeek - info.LastWeek
		}

		if weeksInactive < s.cfg.InactivityWeeks {
			continue
		}

		current := s.ratings[playerID]
		s.ratings[playerID] = current*(1-f) + s.cfg.BaseRating*f
		regressed++
	}

	log.Info().
		Int("season", currentSeason).
		Int("week", currentWeek).
		Int("players", regressed).
		Msg("Regressed inactive players")
}

// TeamAdjustment projects a roster's player ratings into a single scalar
// usable as an additive modifier to a team's Elo. Per position: the
// snap-share-weighted rating sum minus base, times the position weight;
// the total is scaled and clamped to [-clamp, clamp].
func (s *PlayerStore) TeamAdjustment(roster []models.RosterSlot) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for position, weight := range s.cfg.PositionWeights {
		posRating := 0.0
		found := false
		for _, slot := range roster {
			if slot.Position != position {
				continue
			}
			posRating += s.rating(slot.PlayerID) * slot.SnapShare
			found = true
		}
		if !found {
			continue
		}
		total += (posRating - s.cfg.BaseRating) * weight
	}

	adjustment := total * s.cfg.AdjustmentScale
	if adjustment > s.cfg.AdjustmentClamp {
		adjustment = s.cfg.AdjustmentClamp
	}
	if adjustment < -s.cfg.AdjustmentClamp {
		adjustment = -s.cfg.AdjustmentClamp
	}
	return adjustment
}

// Info returns a copy of the metadata cache entry for a player, and
// whether the player is known.
func (s *PlayerStore) Info(playerID string) (models.PlayerInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.info[playerID]; ok {
		return *info, true
	}
	return models.PlayerInfo{}, false
}

// Ledger returns the store's append-only history.
func (s *PlayerStore) Ledger() *Ledger {
	return s.ledger
}

// Restore replays persisted history into the live rating map and the
// metadata cache. The games counter restarts at zero; last update week
// comes from each player's latest record so inactivity reversion keeps
// working across restarts.
func (s *PlayerStore) Restore(records []models.RatingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = NewLedger()
	for _, rec := range records {
		s.ledger.Append(rec)
	}
	for id, rec := range s.ledger.LatestPerEntity() {
		s.ratings[id] = rec.Rating
		s.info[id] = &models.PlayerInfo{
			Position:   rec.Position,
			LastSeason: rec.Season,
			LastWeek:   rec.Week,
			HasPlayed:  true,
		}
	}

	log.Info().
		Int("records", len(records)).
		Int("players", len(s.ratings)).
		Msg("Player rating history restored")
}
