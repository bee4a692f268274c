package models

import "github.com/shopspring/decimal"

const (
	MovementCredit = "credit"
	MovementDebit  = "debit"
)

// ParsedRecord is one statement line recovered by a parser, before
// normalization and classification. Amount and DailyBalance carry the raw
// pt-BR monetary tokens exactly as they appeared on the line; a balance
// snapshot line has a nil Amount, an ordinary transaction line has a nil
// DailyBalance. A degenerate snapshot line (marker present but no monetary
// token) has both nil.
type ParsedRecord struct {
	Date         string  `json:"date"` // ISO yyyy-mm-dd
	Description  string  `json:"description"`
	Amount       *string `json:"amount"`
	DailyBalance *string `json:"daily_balance"`
	Page         int     `json:"page"` // 1-based
	Line         int     `json:"line"` // 1-based within the page
}

// Transaction is the persisted form of a classified record. Snapshot lines
// are stored with a zero Amount and a non-nil DailyBalance.
type Transaction struct {
	ID              int64            `json:"id"`
	Date            string           `json:"date"`
	Description     string           `json:"description"`
	DescriptionNorm string           `json:"description_norm"`
	Amount          decimal.Decimal  `json:"amount"`
	DailyBalance    *decimal.Decimal `json:"daily_balance,omitempty"`
	MovementType    string           `json:"movement_type"`
	Category        *string          `json:"category,omitempty"`
	CategoryDetail  *string          `json:"category_detail,omitempty"`
	Page            int              `json:"page"`
	Line            int              `json:"line"`
	UniqueHash      string           `json:"unique_hash"`
}

// DailyBalance is the end-of-day balance snapshot for one date.
type DailyBalance struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}
