package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSQLNotAllowed indicates a sandbox query that is not a plain read.
var ErrSQLNotAllowed = errors.New("statement not allowed in sandbox")

var (
	selectOnlyRe = regexp.MustCompile(`(?is)^(with\s+.+?select|select)\s`)
	forbiddenRe  = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|create|alter|attach|detach|pragma|replace|vacuum|transaction|begin|commit|rollback)\b`)
)

// ValidateReadOnlySQL accepts SELECT (and WITH ... SELECT) queries only and
// rejects anything carrying a write or schema keyword. Returns the trimmed
// query ready for execution.
func ValidateReadOnlySQL(query string) (string, error) {
	q := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if q == "" {
		return "", fmt.Errorf("%w: empty query", ErrSQLNotAllowed)
	}
	if !selectOnlyRe.MatchString(q) {
		return "", fmt.Errorf("%w: only SELECT queries are permitted", ErrSQLNotAllowed)
	}
	if forbiddenRe.MatchString(q) {
		return "", fmt.Errorf("%w: query contains a forbidden keyword", ErrSQLNotAllowed)
	}
	return q, nil
}
