package infrastructure

import (
	"context"
	"math/rand/v2"

	"dealer/domain/entities"
)

// LocalDiceRoller draws game values from the process RNG. It stands in for
// an externally animated dice when the engine runs without a messaging
// frontend, and in tests.
type LocalDiceRoller struct{}

// NewLocalDiceRoller creates a new local roller
func NewLocalDiceRoller() *LocalDiceRoller {
	return &LocalDiceRoller{}
}

// Roll returns a uniform value in [1, MaxValue] for the game kind
func (r *LocalDiceRoller) Roll(ctx context.Context, chatID int64, kind entities.GameKind) (int, error) {
	if !kind.IsValid() {
		return 0, entities.NewValidationError("unknown game kind: %s", kind)
	}
	return rand.IntN(kind.MaxValue()) + 1, nil
}
