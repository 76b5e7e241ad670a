package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nanoPerTON is the number of nanotons in one TON
var nanoPerTON = decimal.New(1, 9)

// FormatTON renders a nanoton amount as a human TON string, e.g. "5 TON"
// or "0.25 TON".
func FormatTON(amountNano int64) string {
	d := decimal.NewFromInt(amountNano).Div(nanoPerTON)
	return d.String() + " TON"
}

// ParseTON parses a human TON amount ("5", "0.25") into nanotons
func ParseTON(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return d.Mul(nanoPerTON).IntPart(), nil
}

// NormalizeMemo canonicalizes a transfer memo for identity comparison:
// case-insensitive, whitespace-insensitive, leading @ stripped.
func NormalizeMemo(memo string) string {
	memo = strings.TrimSpace(memo)
	memo = strings.TrimPrefix(memo, "@")
	return strings.ToLower(memo)
}

// MemoMatches reports whether a transaction memo identifies the expected
// identity under memo normalization.
func MemoMatches(txMemo, expected string) bool {
	return NormalizeMemo(txMemo) != "" && NormalizeMemo(txMemo) == NormalizeMemo(expected)
}
