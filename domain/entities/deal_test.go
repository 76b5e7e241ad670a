package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDealStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    DealStatus
		to      DealStatus
		allowed bool
	}{
		{"propose to accept", DealStatusProposed, DealStatusAccepted, true},
		{"propose to decline", DealStatusProposed, DealStatusDeclined, true},
		{"propose to cancel", DealStatusProposed, DealStatusCancelled, true},
		{"propose to expire", DealStatusProposed, DealStatusExpired, true},
		{"accept to claim", DealStatusAccepted, DealStatusPaymentClaimed, true},
		{"accept to cancel", DealStatusAccepted, DealStatusCancelled, true},
		{"claim to verified", DealStatusPaymentClaimed, DealStatusVerified, true},
		{"verified to completed", DealStatusVerified, DealStatusCompleted, true},

		{"propose cannot skip to verified", DealStatusProposed, DealStatusVerified, false},
		{"propose cannot skip to completed", DealStatusProposed, DealStatusCompleted, false},
		{"claim cannot cancel", DealStatusPaymentClaimed, DealStatusCancelled, false},
		{"claim cannot expire", DealStatusPaymentClaimed, DealStatusExpired, false},
		{"verified cannot cancel", DealStatusVerified, DealStatusCancelled, false},
		{"verified cannot regress", DealStatusVerified, DealStatusAccepted, false},
		{"completed is absorbing", DealStatusCompleted, DealStatusFailed, false},
		{"declined is absorbing", DealStatusDeclined, DealStatusProposed, false},
		{"expired is absorbing", DealStatusExpired, DealStatusAccepted, false},
		{"cancelled is absorbing", DealStatusCancelled, DealStatusCompleted, false},
		{"failed is absorbing", DealStatusFailed, DealStatusProposed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDealStatus_FailReachableFromEveryNonTerminalState(t *testing.T) {
	nonTerminal := []DealStatus{
		DealStatusProposed, DealStatusAccepted, DealStatusPaymentClaimed, DealStatusVerified,
	}
	for _, status := range nonTerminal {
		assert.True(t, status.CanTransitionTo(DealStatusFailed), "from %s", status)
	}
}

func TestDealStatus_IsTerminal(t *testing.T) {
	terminal := []DealStatus{
		DealStatusCompleted, DealStatusDeclined, DealStatusExpired,
		DealStatusCancelled, DealStatusFailed,
	}
	for _, status := range terminal {
		assert.True(t, status.IsTerminal(), "%s should be terminal", status)
	}

	open := []DealStatus{
		DealStatusProposed, DealStatusAccepted, DealStatusPaymentClaimed, DealStatusVerified,
	}
	for _, status := range open {
		assert.False(t, status.IsTerminal(), "%s should not be terminal", status)
	}
}

func TestNewDealID(t *testing.T) {
	id := NewDealID()
	assert.True(t, strings.HasPrefix(id, "deal_"))
	assert.Len(t, id, len("deal_")+8)

	// IDs double as payment memos, so they must be distinct
	assert.NotEqual(t, id, NewDealID())
}

func TestDeal_IsExpired(t *testing.T) {
	now := time.Now()
	deal := &Deal{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, deal.IsExpired(now))
	assert.True(t, deal.IsExpired(now.Add(2*time.Minute)))
}

func TestDeal_IsOpen(t *testing.T) {
	assert.True(t, (&Deal{Status: DealStatusProposed}).IsOpen())
	assert.True(t, (&Deal{Status: DealStatusAccepted}).IsOpen())
	assert.False(t, (&Deal{Status: DealStatusPaymentClaimed}).IsOpen())
	assert.False(t, (&Deal{Status: DealStatusCompleted}).IsOpen())
}
