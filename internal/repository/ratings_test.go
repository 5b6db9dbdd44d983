//go:build integration

package repository

import (
	"testing"
	"time"

	"fightiq/ratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingHistoryRepository_AppendAndLatest(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	records := []models.RatingRecord{
		{Season: 2024, Week: 1, EntityID: "IT_KC", EntityType: models.EntityTeam, Rating: 1511.88},
		{Season: 2024, Week: 1, EntityID: "IT_BUF", EntityType: models.EntityTeam, Rating: 1488.12},
		{Season: 2024, Week: 2, EntityID: "IT_KC", EntityType: models.EntityTeam, Rating: 1505.31},
	}

	require.NoError(t, db.Ratings.AppendBatch(ctx, records))

	latest, err := db.Ratings.LatestPerEntity(ctx, models.EntityTeam)
	require.NoError(t, err)

	byID := make(map[string]models.RatingRecord)
	for _, rec := range latest {
		byID[rec.EntityID] = rec
	}

	assert.Equal(t, 1505.31, byID["IT_KC"].Rating, "latest record per entity wins")
	assert.Equal(t, 2, byID["IT_KC"].Week)
	assert.Equal(t, 1488.12, byID["IT_BUF"].Rating)
}

func TestRatingHistoryRepository_History(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	records := []models.RatingRecord{
		{Season: 2024, Week: 1, EntityID: "IT_P1", EntityType: models.EntityPlayer, Position: models.PositionQB, Rating: 1006.4},
		{Season: 2024, Week: 2, EntityID: "IT_P1", EntityType: models.EntityPlayer, Position: models.PositionQB, Rating: 1010.1},
	}
	require.NoError(t, db.Ratings.AppendBatch(ctx, records))

	history, err := db.Ratings.History(ctx, "IT_P1")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(history), 2)

	// Time-ordered, position preserved
	assert.Equal(t, models.PositionQB, history[0].Position)
	assert.LessOrEqual(t, history[0].Week, history[1].Week)
}

func TestGameRepository_UnratedFeedOrdering(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	h1, a1 := 27, 24
	games := []*models.GameOutcome{
		{GameID: 91002, Season: 2024, Week: 2, HomeTeam: "IT_SF", AwayTeam: "IT_BAL", HomeScore: &h1, AwayScore: &a1, GameDate: time.Now()},
		{GameID: 91001, Season: 2024, Week: 1, HomeTeam: "IT_KC", AwayTeam: "IT_BUF", HomeScore: &h1, AwayScore: &a1, GameDate: time.Now().Add(-7 * 24 * time.Hour)},
	}

	for _, game := range games {
		require.NoError(t, db.Games.Upsert(ctx, game))
	}

	unrated, err := db.Games.ListUnrated(ctx)
	require.NoError(t, err)

	// Strict chronological order regardless of insert order
	var lastSeason, lastWeek int
	for _, game := range unrated {
		require.False(t, game.Season < lastSeason || (game.Season == lastSeason && game.Week < lastWeek),
			"feed must be ordered by (season, week)")
		lastSeason, lastWeek = game.Season, game.Week
	}

	require.NoError(t, db.Games.MarkRated(ctx, []int{91001, 91002}))

	remaining, err := db.Games.ListUnrated(ctx)
	require.NoError(t, err)
	for _, game := range remaining {
		assert.NotContains(t, []int{91001, 91002}, game.GameID)
	}
}

func TestRosterRepository_UpsertAndList(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	entry := &models.RosterEntry{
		GameID:           91001,
		TeamID:           "IT_KC",
		PlayerID:         "IT_P_MAHOMES",
		Position:         models.PositionQB,
		SnapShare:        1.0,
		PerformanceScore: 0.7,
	}

	require.NoError(t, db.Rosters.Upsert(ctx, entry))

	// Upsert again with a revised performance score
	entry.PerformanceScore = 0.72
	require.NoError(t, db.Rosters.Upsert(ctx, entry))

	entries, err := db.Rosters.ListByGame(ctx, 91001)
	require.NoError(t, err)

	var found *models.RosterEntry
	for _, e := range entries {
		if e.PlayerID == "IT_P_MAHOMES" {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 0.72, found.PerformanceScore)
	assert.Equal(t, models.PositionQB, found.Position)
}
