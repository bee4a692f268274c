package services

import (
	"errors"
	"io"

	"github.com/username/extratodb/src/database"
	"github.com/username/extratodb/src/models"
)

var (
	ErrParsingFailed = errors.New("statement parsing failed")
	ErrStorageFailed = errors.New("statement storage failed")
)

// IngestResult summarizes one ingestion pass over a statement.
type IngestResult struct {
	Source               string `json:"source"`
	RecordsParsed        int    `json:"records_parsed"`
	TransactionsInserted int    `json:"transactions_inserted"`
	DuplicatesSkipped    int    `json:"duplicates_skipped"`
	BalancesUpserted     int    `json:"balances_upserted"`
}

// IngestService runs the parse -> normalize -> classify -> persist pipeline
// and serves the read side for reporting.
type IngestService interface {
	IngestStatement(file io.Reader, source string) (*IngestResult, error)
	DailyBalances() ([]models.DailyBalance, error)
	Transactions(filter database.TransactionFilter) ([]models.Transaction, error)
}
