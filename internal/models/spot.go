package models

// Spot classifies a study session into one of a fixed set of poker
// situations. The set is closed; the frontend renders it as-is.
type Spot string

const (
	SpotVsFishes     Spot = "vs Fishes"
	SpotBBVsBTN      Spot = "BB vs BTN"
	SpotBTNVsBB      Spot = "BTN vs BB"
	SpotCOVsBTN      Spot = "CO vs BTN"
	SpotThreeBetIP   Spot = "3Bet IP"
	SpotThreeBetOOP  Spot = "3Bet OOP"
	SpotCallThreeBet Spot = "Call 3Bet"
	SpotMWP          Spot = "MWP"
	SpotSBVsBB       Spot = "SB vs BB"
)

// AllSpots lists every valid spot in display order.
func AllSpots() []Spot {
	return []Spot{
		SpotVsFishes,
		SpotBBVsBTN,
		SpotBTNVsBB,
		SpotCOVsBTN,
		SpotThreeBetIP,
		SpotThreeBetOOP,
		SpotCallThreeBet,
		SpotMWP,
		SpotSBVsBB,
	}
}

func (s Spot) Valid() bool {
	for _, v := range AllSpots() {
		if s == v {
			return true
		}
	}
	return false
}
