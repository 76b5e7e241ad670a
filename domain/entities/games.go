package entities

import (
	"fmt"
	"strings"
)

// GameKind is the closed set of casino games. Each kind carries its own
// pure value-to-multiplier and value-to-description policy; the settlement
// pipeline is written against this type, not against callbacks.
type GameKind string

const (
	GameKindSlot GameKind = "slot"
	GameKindDice GameKind = "dice"
)

// slotSymbols indexes the three base-4 reel digits encoded in a slot value
var slotSymbols = [4]string{"bar", "grape", "lemon", "seven"}

// IsValid reports whether the kind is a known game
func (g GameKind) IsValid() bool {
	return g == GameKindSlot || g == GameKindDice
}

// MaxValue returns the largest result value the game can produce
func (g GameKind) MaxValue() int {
	switch g {
	case GameKindSlot:
		return 64
	case GameKindDice:
		return 6
	}
	return 0
}

// MaxMultiplier returns the worst-case payout multiplier, used to cap bets
// so the bankroll always covers a maximum win.
func (g GameKind) MaxMultiplier() float64 {
	switch g {
	case GameKindSlot:
		return 10
	case GameKindDice:
		return 3
	}
	return 0
}

// JackpotValue returns the result value that additionally awards the pooled
// jackpot, or 0 if the game has none.
func (g GameKind) JackpotValue() int {
	if g == GameKindSlot {
		return 64
	}
	return 0
}

// Multiplier maps a result value to its payout multiplier. Zero means the
// bet is lost.
func (g GameKind) Multiplier(value int) float64 {
	if value < 1 || value > g.MaxValue() {
		return 0
	}
	switch g {
	case GameKindSlot:
		r := slotReels(value)
		switch {
		case r[0] == 3 && r[1] == 3 && r[2] == 3:
			return 10 // triple seven
		case r[0] == r[1] && r[1] == r[2]:
			return 5 // any other triple
		case countSevens(r) == 2:
			return 2
		default:
			return 0
		}
	case GameKindDice:
		switch value {
		case 6:
			return 3
		case 5:
			return 1.5
		default:
			return 0
		}
	}
	return 0
}

// Describe renders a result value for the user
func (g GameKind) Describe(value int) string {
	if value < 1 || value > g.MaxValue() {
		return "invalid result"
	}
	switch g {
	case GameKindSlot:
		r := slotReels(value)
		names := []string{slotSymbols[r[0]], slotSymbols[r[1]], slotSymbols[r[2]]}
		if value == 64 {
			return "seven seven seven, JACKPOT"
		}
		return strings.Join(names, " ")
	case GameKindDice:
		return fmt.Sprintf("rolled a %d", value)
	}
	return ""
}

// SettlementKind is the anti-replay tag for payments consumed by this game
func (g GameKind) SettlementKind() string {
	return "casino_" + string(g)
}

// slotReels decodes a 1..64 slot value into its three base-4 reel digits
func slotReels(value int) [3]int {
	v := value - 1
	return [3]int{v & 3, (v >> 2) & 3, (v >> 4) & 3}
}

func countSevens(r [3]int) int {
	n := 0
	for _, d := range r {
		if d == 3 {
			n++
		}
	}
	return n
}
