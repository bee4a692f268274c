package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidAmount indicates a monetary token that is not a valid pt-BR
// formatted number.
var ErrInvalidAmount = errors.New("invalid amount format")

var spacesRe = regexp.MustCompile(`\s+`)

// stripDiacritics decomposes accented letters and drops the combining marks.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ParseAmount converts a pt-BR formatted monetary string ('.' thousands
// separator, ',' decimal separator, optional leading minus) to a decimal.
// Ex.: "1.234,56" -> 1234.56, "-61,20" -> -61.20.
func ParseAmount(text string) (decimal.Decimal, error) {
	t := strings.TrimSpace(text)
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return d, nil
}

// NormalizeText normalizes a statement description: removes diacritics,
// upper-cases, collapses whitespace runs to single spaces and trims.
// An empty input normalizes to an empty string.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	stripped, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		// Transform failures are limited to malformed UTF-8; keep the input.
		stripped = text
	}
	s := strings.ToUpper(strings.TrimSpace(stripped))
	return spacesRe.ReplaceAllString(s, " ")
}
