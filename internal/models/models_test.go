package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestGameOutcomeHasScores(t *testing.T) {
	game := &GameOutcome{HomeScore: intPtr(24), AwayScore: intPtr(17)}
	assert.True(t, game.HasScores())

	assert.False(t, (&GameOutcome{HomeScore: intPtr(24)}).HasScores())
	assert.False(t, (&GameOutcome{AwayScore: intPtr(17)}).HasScores())
	assert.False(t, (&GameOutcome{}).HasScores())
}

func TestGameOutcomeMargin(t *testing.T) {
	tests := []struct {
		name     string
		home     int
		away     int
		expected int
	}{
		{"home win", 31, 10, 21},
		{"away win", 10, 31, 21},
		{"tie", 21, 21, 0},
		{"one point", 20, 21, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := &GameOutcome{HomeScore: intPtr(tt.home), AwayScore: intPtr(tt.away)}
			assert.Equal(t, tt.expected, game.Margin())
		})
	}
}

func TestGameOutcomeIsTie(t *testing.T) {
	assert.True(t, (&GameOutcome{HomeScore: intPtr(14), AwayScore: intPtr(14)}).IsTie())
	assert.False(t, (&GameOutcome{HomeScore: intPtr(14), AwayScore: intPtr(13)}).IsTie())
	assert.False(t, (&GameOutcome{}).IsTie())
}

func TestParsePosition(t *testing.T) {
	for _, raw := range []string{"QB", "RB", "WR", "TE", "OL", "DL", "LB", "CB", "S", "K", "P"} {
		assert.Equal(t, Position(raw), ParsePosition(raw))
	}

	assert.Equal(t, PositionUnknown, ParsePosition("FB"))
	assert.Equal(t, PositionUnknown, ParsePosition("qb"))
	assert.Equal(t, PositionUnknown, ParsePosition(""))
}

func TestRatingRecordAfter(t *testing.T) {
	base := RatingRecord{Season: 2024, Week: 5}

	assert.True(t, RatingRecord{Season: 2024, Week: 6}.After(base))
	assert.True(t, RatingRecord{Season: 2025, Week: 1}.After(base))
	assert.False(t, RatingRecord{Season: 2024, Week: 5}.After(base))
	assert.False(t, RatingRecord{Season: 2024, Week: 4}.After(base))
	assert.False(t, RatingRecord{Season: 2023, Week: 18}.After(base))
}
