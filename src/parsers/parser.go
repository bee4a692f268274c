package parsers

import (
	"io"

	"github.com/username/extratodb/src/models"
)

// StatementParser extracts raw records from one uploaded bank statement.
type StatementParser interface {
	Parse(file io.Reader) ([]models.ParsedRecord, error)
}
