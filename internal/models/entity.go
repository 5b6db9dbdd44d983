package models

// EntityType distinguishes the two rating scales. Team and player ratings
// live on different bases and are never compared directly.
type EntityType string

const (
	EntityTeam   EntityType = "team"
	EntityPlayer EntityType = "player"
)

// Position is a player's position group, fixed at first observation.
type Position string

const (
	PositionQB      Position = "QB"
	PositionRB      Position = "RB"
	PositionWR      Position = "WR"
	PositionTE      Position = "TE"
	PositionOL      Position = "OL"
	PositionDL      Position = "DL"
	PositionLB      Position = "LB"
	PositionCB      Position = "CB"
	PositionS       Position = "S"
	PositionK       Position = "K"
	PositionP       Position = "P"
	PositionUnknown Position = "UNKNOWN"
)

// ParsePosition maps a raw position string onto the known enumeration,
// falling back to UNKNOWN for anything unrecognized.
func ParsePosition(s string) Position {
	switch Position(s) {
	case PositionQB, PositionRB, PositionWR, PositionTE, PositionOL,
		PositionDL, PositionLB, PositionCB, PositionS, PositionK, PositionP:
		return Position(s)
	}
	return PositionUnknown
}
