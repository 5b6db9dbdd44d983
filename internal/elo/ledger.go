package elo

import (
	"fightiq/ratings/internal/models"
)

// Ledger is an append-only, time-indexed record of every rating an entity
// has held. Both stores append to their own ledger after every update;
// replaying a ledger through LatestPerEntity is the sole mechanism for
// restoring a store's live rating map from persisted history.
//
// Records must be appended in non-decreasing (season, week) order per
// entity. That ordering is a caller contract, not validated here.
type Ledger struct {
	records []models.RatingRecord
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds a record. Appending never overwrites prior records.
func (l *Ledger) Append(rec models.RatingRecord) {
	l.records = append(l.records, rec)
}

// Len returns the number of records appended so far.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the full history in insertion order.
func (l *Ledger) Records() []models.RatingRecord {
	out := make([]models.RatingRecord, len(l.records))
	copy(out, l.records)
	return out
}

// LatestPerEntity returns, for each entity id, the record with the
// greatest (season, week). With in-order appends this is the last record
// seen per entity, so restore yields ratings bit-identical to a store
// that never restarted.
func (l *Ledger) LatestPerEntity() map[string]models.RatingRecord {
	latest := make(map[string]models.RatingRecord)
	for _, rec := range l.records {
		cur, ok := latest[rec.EntityID]
		if !ok || rec.After(cur) || (rec.Season == cur.Season && rec.Week == cur.Week) {
			latest[rec.EntityID] = rec
		}
	}
	return latest
}
