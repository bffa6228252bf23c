package schema

import (
	"time"
	_ "time/tzdata"
)

// Kind identifies which compute function shapes a provider's raw snapshot.
type Kind string

const (
	KindEnfor       Kind = "enfor"
	KindEQ          Kind = "eq"
	KindRefinitiv   Kind = "refinitiv"
	KindMeteologica Kind = "meteologica"
)

// Kinds lists every supported provider kind.
var Kinds = []Kind{KindEnfor, KindEQ, KindRefinitiv, KindMeteologica}

// Valid reports whether k is a known provider kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// KeyColumn is the third index column of the kind's canonical table.
// EQ series are labelled by tag; every other provider by bidding zone.
func (k Kind) KeyColumn() string {
	if k == KindEQ {
		return TagCol
	}
	return BiddingZoneCol
}

// Day-ahead issue hours per kind.
const (
	EnforIssueHour     = 11
	EQIssueHour        = 6
	RefinitivIssueHour = 6
)

// MarketZone is the time zone of the Nordic day-ahead market.
const MarketZone = "Europe/Copenhagen"

// MarketLocation loads MarketZone from the embedded tz database.
func MarketLocation() *time.Location {
	loc, err := time.LoadLocation(MarketZone)
	if err != nil {
		panic(err)
	}
	return loc
}
