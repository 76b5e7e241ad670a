package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTON(t *testing.T) {
	assert.Equal(t, "5 TON", FormatTON(5_000_000_000))
	assert.Equal(t, "0.25 TON", FormatTON(250_000_000))
	assert.Equal(t, "0.000000001 TON", FormatTON(1))
	assert.Equal(t, "0 TON", FormatTON(0))
}

func TestParseTON(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"5", 5_000_000_000},
		{"0.25", 250_000_000},
		{" 1.5 ", 1_500_000_000},
		{"0.000000001", 1},
	}
	for _, tt := range tests {
		got, err := ParseTON(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTON("not a number")
	assert.Error(t, err)
}

func TestNormalizeMemo(t *testing.T) {
	assert.Equal(t, "alice", NormalizeMemo("alice"))
	assert.Equal(t, "alice", NormalizeMemo("@Alice"))
	assert.Equal(t, "alice", NormalizeMemo("  ALICE  "))
	assert.Equal(t, "", NormalizeMemo("   "))
}

func TestMemoMatches(t *testing.T) {
	assert.True(t, MemoMatches("@Alice", "alice"))
	assert.True(t, MemoMatches(" deal_a1b2c3d4 ", "deal_A1B2C3D4"))
	assert.False(t, MemoMatches("bob", "alice"))

	// Empty memos never match anything, including each other
	assert.False(t, MemoMatches("", ""))
	assert.False(t, MemoMatches("", "alice"))
}
