package elo

import (
	"math"
	"testing"

	"fightiq/ratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testGame(home, away string, homeScore, awayScore, season, week int) *models.GameOutcome {
	return &models.GameOutcome{
		Season:    season,
		Week:      week,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: intPtr(homeScore),
		AwayScore: intPtr(awayScore),
	}
}

func TestTeamStore_InitializeIdempotent(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF"})

	assert.Equal(t, 1500.0, store.Rating("KC"))

	// Move a rating, then re-initialize; the existing rating survives
	store.Update(testGame("KC", "BUF", 27, 24, 2024, 1))
	rated := store.Rating("KC")
	require.NotEqual(t, 1500.0, rated)

	store.Initialize([]string{"KC", "BUF", "SF"})
	assert.Equal(t, rated, store.Rating("KC"))
	assert.Equal(t, 1500.0, store.Rating("SF"))
}

func TestTeamStore_UnseenTeamDefaultsToBase(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	assert.Equal(t, 1500.0, store.Rating("NOBODY"))
}

func TestTeamStore_UpdateKnownScenario(t *testing.T) {
	// Two teams at base, home wins 27-24 with K=20, home adv 50:
	// E_h = 1/(1+10^((1500-1550)/400)), M = ln(4), delta ~= 11.88
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF"})

	newHome, newAway := store.Update(testGame("KC", "BUF", 27, 24, 2024, 1))

	expectedHome := 1.0 / (1.0 + math.Pow(10, (1500-1550)/400.0))
	expectedDelta := 20 * math.Log(4) * (1 - expectedHome)

	assert.InDelta(t, 1500+expectedDelta, newHome, 1e-9)
	assert.InDelta(t, 1500-expectedDelta, newAway, 1e-9)
	assert.InDelta(t, 11.88, newHome-1500, 0.01)
}

func TestTeamStore_ZeroSum(t *testing.T) {
	tests := []struct {
		name      string
		homeScore int
		awayScore int
		isPlayoff bool
	}{
		{"home blowout", 45, 10, false},
		{"away close win", 20, 23, false},
		{"playoff game", 31, 28, true},
		{"home favorite upset", 3, 38, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewTeamStore(DefaultTeamConfig())
			store.Initialize([]string{"HOME", "AWAY"})

			// Skew ratings first so expectations are asymmetric
			store.Update(testGame("HOME", "AWAY", 35, 7, 2024, 1))

			beforeHome := store.Rating("HOME")
			beforeAway := store.Rating("AWAY")

			game := testGame("HOME", "AWAY", tt.homeScore, tt.awayScore, 2024, 2)
			game.IsPlayoff = tt.isPlayoff
			newHome, newAway := store.Update(game)

			deltaHome := newHome - beforeHome
			deltaAway := newAway - beforeAway
			assert.Equal(t, 0.0, deltaHome+deltaAway, "deltas must cancel exactly")
			assert.NotZero(t, deltaHome)
		})
	}
}

func TestTeamStore_TieProducesNoChange(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF"})
	store.Update(testGame("KC", "BUF", 30, 20, 2024, 1))

	beforeHome := store.Rating("KC")
	beforeAway := store.Rating("BUF")

	newHome, newAway := store.Update(testGame("KC", "BUF", 17, 17, 2024, 2))
	assert.Equal(t, beforeHome, newHome)
	assert.Equal(t, beforeAway, newAway)
}

func TestTeamStore_PlayoffMultiplier(t *testing.T) {
	regular := NewTeamStore(DefaultTeamConfig())
	playoff := NewTeamStore(DefaultTeamConfig())

	regular.Update(testGame("KC", "BUF", 27, 24, 2024, 1))

	game := testGame("KC", "BUF", 27, 24, 2024, 1)
	game.IsPlayoff = true
	playoff.Update(game)

	regularDelta := regular.Rating("KC") - 1500
	playoffDelta := playoff.Rating("KC") - 1500
	assert.InDelta(t, 1.2, playoffDelta/regularDelta, 1e-9, "playoff games swing 1.2x harder")
}

func TestTeamStore_HomeAdvantageAffectsExpectationOnly(t *testing.T) {
	// Equal teams: the home side is favored, so a home win moves ratings
	// less than an away win does
	homeWin := NewTeamStore(DefaultTeamConfig())
	awayWin := NewTeamStore(DefaultTeamConfig())

	homeWin.Update(testGame("A", "B", 24, 21, 2024, 1))
	awayWin.Update(testGame("A", "B", 21, 24, 2024, 1))

	homeWinDelta := homeWin.Rating("A") - 1500
	awayWinDelta := 1500 - awayWin.Rating("A")
	assert.Less(t, homeWinDelta, awayWinDelta)
}

func TestTeamStore_RegressToMean(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF", "MID"})
	store.Update(testGame("KC", "BUF", 38, 10, 2024, 1))

	strong := store.Rating("KC")
	weak := store.Rating("BUF")
	require.Greater(t, strong, 1500.0)
	require.Less(t, weak, 1500.0)

	store.RegressToMean()

	// Every rating lands strictly between its old value and base
	assert.Less(t, store.Rating("KC"), strong)
	assert.Greater(t, store.Rating("KC"), 1500.0)
	assert.Greater(t, store.Rating("BUF"), weak)
	assert.Less(t, store.Rating("BUF"), 1500.0)

	// A team already at base stays there
	assert.Equal(t, 1500.0, store.Rating("MID"))

	// Exact reversion fraction
	assert.InDelta(t, strong*(1-0.33)+1500*0.33, store.Rating("KC"), 1e-9)
}

func TestTeamStore_MatchupProbability(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF"})

	// Equal teams at home: home advantage tips the scale
	pHome, pAway := store.MatchupProbability("KC", "BUF", false)
	assert.Greater(t, pHome, 0.5)
	assert.InDelta(t, 1.0, pHome+pAway, 1e-9)

	// Neutral site, equal teams: coin flip
	pHome, pAway = store.MatchupProbability("KC", "BUF", true)
	assert.InDelta(t, 0.5, pHome, 1e-9)
	assert.InDelta(t, 0.5, pAway, 1e-9)
}

func TestTeamStore_MatchupProbabilitySymmetry(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Update(testGame("KC", "BUF", 31, 17, 2024, 1))

	pA, _ := store.MatchupProbability("KC", "BUF", true)
	_, pAsAway := store.MatchupProbability("BUF", "KC", true)
	assert.InDelta(t, pA, pAsAway, 1e-12, "neutral-site probabilities are complementary")
}

func TestTeamStore_RestoreFidelity(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Initialize([]string{"KC", "BUF", "SF", "BAL"})
	store.Update(testGame("KC", "BUF", 27, 24, 2024, 1))
	store.Update(testGame("SF", "BAL", 31, 17, 2024, 1))
	store.Update(testGame("KC", "SF", 20, 23, 2024, 2))

	records := store.Ledger().Records()

	restored := NewTeamStore(DefaultTeamConfig())
	restored.Restore(records)

	for _, team := range []string{"KC", "BUF", "SF", "BAL"} {
		assert.Equal(t, store.Rating(team), restored.Rating(team), "restore must be bit-identical for %s", team)
	}
	assert.Equal(t, store.Ledger().Len(), restored.Ledger().Len())
}

func TestTeamStore_LedgerReceivesTwoRecordsPerGame(t *testing.T) {
	store := NewTeamStore(DefaultTeamConfig())
	store.Update(testGame("KC", "BUF", 27, 24, 2024, 1))
	store.Update(testGame("KC", "BUF", 24, 27, 2024, 2))

	require.Equal(t, 4, store.Ledger().Len())
	records := store.Ledger().Records()
	assert.Equal(t, models.EntityTeam, records[0].EntityType)
	assert.Equal(t, store.Rating("KC"), records[2].Rating)
}
