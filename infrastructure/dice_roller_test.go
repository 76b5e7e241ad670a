package infrastructure

import (
	"context"
	"testing"

	"dealer/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiceRoller_StaysInRange(t *testing.T) {
	roller := NewLocalDiceRoller()
	ctx := context.Background()

	for _, game := range []entities.GameKind{entities.GameKindDice, entities.GameKindSlot} {
		seen := make(map[int]bool)
		for i := 0; i < 1000; i++ {
			value, err := roller.Roll(ctx, 200, game)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, value, 1)
			assert.LessOrEqual(t, value, game.MaxValue())
			seen[value] = true
		}
		// 1000 rolls over at most 64 faces hit more than one value
		assert.Greater(t, len(seen), 1)
	}
}
