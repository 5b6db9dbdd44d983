package models

// RatingRecord is one immutable ledger entry: the rating an entity held
// after the update at (season, week). Position is set for player records
// and empty for team records.
type RatingRecord struct {
	Season     int        `db:"season" json:"season"`
	Week       int        `db:"week" json:"week"`
	EntityID   string     `db:"entity_id" json:"entity_id"`
	EntityType EntityType `db:"entity_type" json:"entity_type"`
	Position   Position   `db:"position" json:"position,omitempty"`
	Rating     float64    `db:"rating" json:"rating"`
}

// After reports whether this record's (season, week) is strictly later
// than the other's.
func (r RatingRecord) After(other RatingRecord) bool {
	if r.Season != other.Season {
		return r.Season > other.Season
	}
	return r.Week > other.Week
}
