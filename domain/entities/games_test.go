package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameKind_IsValid(t *testing.T) {
	assert.True(t, GameKindSlot.IsValid())
	assert.True(t, GameKindDice.IsValid())
	assert.False(t, GameKind("roulette").IsValid())
	assert.False(t, GameKind("").IsValid())
}

func TestGameKind_DiceMultiplier(t *testing.T) {
	assert.Equal(t, 3.0, GameKindDice.Multiplier(6))
	assert.Equal(t, 1.5, GameKindDice.Multiplier(5))
	for v := 1; v <= 4; v++ {
		assert.Equal(t, 0.0, GameKindDice.Multiplier(v), "value %d", v)
	}

	// Out of range values never pay
	assert.Equal(t, 0.0, GameKindDice.Multiplier(0))
	assert.Equal(t, 0.0, GameKindDice.Multiplier(7))
}

func TestGameKind_SlotMultiplier(t *testing.T) {
	// 64 encodes three sevens (reels 3,3,3)
	assert.Equal(t, 10.0, GameKindSlot.Multiplier(64))

	// 1 encodes three bars (reels 0,0,0): a triple, but not sevens
	assert.Equal(t, 5.0, GameKindSlot.Multiplier(1))
	// 22 encodes 1,1,1 (triple grape)
	assert.Equal(t, 5.0, GameKindSlot.Multiplier(22))
	// 43 encodes 2,2,2 (triple lemon)
	assert.Equal(t, 5.0, GameKindSlot.Multiplier(43))

	// 16 encodes 3,3,0: two sevens
	assert.Equal(t, 2.0, GameKindSlot.Multiplier(16))
	// 61 encodes 0,3,3: two sevens
	assert.Equal(t, 2.0, GameKindSlot.Multiplier(61))

	// 2 encodes 1,0,0: nothing
	assert.Equal(t, 0.0, GameKindSlot.Multiplier(2))

	assert.Equal(t, 0.0, GameKindSlot.Multiplier(0))
	assert.Equal(t, 0.0, GameKindSlot.Multiplier(65))
}

func TestGameKind_SlotMultiplierExhaustive(t *testing.T) {
	// Exactly one jackpot value, three other triples, and no multiplier
	// outside the defined set
	var jackpots, triples, doubles int
	for v := 1; v <= 64; v++ {
		switch GameKindSlot.Multiplier(v) {
		case 10:
			jackpots++
		case 5:
			triples++
		case 2:
			doubles++
		case 0:
		default:
			t.Fatalf("unexpected multiplier for value %d", v)
		}
	}
	assert.Equal(t, 1, jackpots)
	assert.Equal(t, 3, triples)
	assert.Equal(t, 9, doubles)
}

func TestGameKind_JackpotValue(t *testing.T) {
	assert.Equal(t, 64, GameKindSlot.JackpotValue())
	assert.Equal(t, 0, GameKindDice.JackpotValue())
}

func TestGameKind_MaxMultiplierCoversAllValues(t *testing.T) {
	for _, g := range []GameKind{GameKindSlot, GameKindDice} {
		for v := 1; v <= g.MaxValue(); v++ {
			assert.LessOrEqual(t, g.Multiplier(v), g.MaxMultiplier(), "%s value %d", g, v)
		}
	}
}

func TestGameKind_Describe(t *testing.T) {
	assert.Equal(t, "seven seven seven, JACKPOT", GameKindSlot.Describe(64))
	assert.Equal(t, "bar bar bar", GameKindSlot.Describe(1))
	assert.Equal(t, "rolled a 4", GameKindDice.Describe(4))
	assert.Equal(t, "invalid result", GameKindDice.Describe(9))
}

func TestGameKind_SettlementKind(t *testing.T) {
	assert.Equal(t, "casino_slot", GameKindSlot.SettlementKind())
	assert.Equal(t, "casino_dice", GameKindDice.SettlementKind())
}
