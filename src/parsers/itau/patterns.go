package itau

import "regexp"

// Patterns holds the regular expressions that drive line extraction. They are
// tuned to the Itaú checking-account statement layout; other layouts can swap
// them without touching the extraction control flow.
type Patterns struct {
	// DateAnchor matches a DD/MM/YYYY date at the start of a line, followed
	// by whitespace. Lines without it are headers/footers/notices.
	DateAnchor *regexp.Regexp
	// MoneyToken matches a pt-BR monetary amount: optional minus, 1-3 digit
	// groups with '.' thousands separators, ',' and exactly two decimals.
	// Adjacency to other digits is rejected separately (Go regexps have no
	// lookaround).
	MoneyToken *regexp.Regexp
	// SnapshotMarker is the literal (compared case-insensitively) that tags a
	// daily balance snapshot line instead of a transaction.
	SnapshotMarker string
}

func DefaultPatterns() Patterns {
	return Patterns{
		DateAnchor:     regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+`),
		MoneyToken:     regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})*,\d{2}`),
		SnapshotMarker: "SALDO DO DIA",
	}
}

// moneyTokenIndexes returns the [start, end) pairs of monetary tokens in s,
// rejecting candidates adjacent to other digits (e.g. the tail of a longer
// digit run such as an account number).
func (p Patterns) moneyTokenIndexes(s string) [][]int {
	candidates := p.MoneyToken.FindAllStringIndex(s, -1)
	var out [][]int
	for _, c := range candidates {
		if c[0] > 0 && isASCIIDigit(s[c[0]-1]) {
			continue
		}
		if c[1] < len(s) && isASCIIDigit(s[c[1]]) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// stripMoneyTokens removes every monetary token from s.
func (p Patterns) stripMoneyTokens(s string) string {
	tokens := p.moneyTokenIndexes(s)
	if len(tokens) == 0 {
		return s
	}
	var b []byte
	prev := 0
	for _, t := range tokens {
		b = append(b, s[prev:t[0]]...)
		prev = t[1]
	}
	b = append(b, s[prev:]...)
	return string(b)
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
