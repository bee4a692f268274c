package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/extratodb/src/models"
)

// Store is the persistence collaborator for the ingestion pipeline. It owns
// durability and uniqueness enforcement; record construction stays with the
// pipeline.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Date         string // ISO yyyy-mm-dd
	MovementType string // models.MovementCredit / models.MovementDebit
	Category     string
	Limit        int
}

// Batch groups the writes of one ingestion pass into a single SQL
// transaction. There is one writer per pass; concurrent ingestion against the
// same store is not supported.
type Batch struct {
	tx        *sql.Tx
	insertTx  *sql.Stmt
	upsertBal *sql.Stmt
	done      bool
}

func (s *Store) BeginBatch() (*Batch, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}

	insertTx, err := tx.Prepare(`INSERT OR IGNORE INTO transactions
		(date, description, description_norm, amount, daily_balance, movement_type,
		 category, category_detail, page, line, unique_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}

	upsertBal, err := tx.Prepare(`INSERT INTO daily_balances (date, balance)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET balance = excluded.balance, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		insertTx.Close()
		tx.Rollback()
		return nil, fmt.Errorf("error preparing balance upsert statement: %w", err)
	}

	return &Batch{tx: tx, insertTx: insertTx, upsertBal: upsertBal}, nil
}

// InsertTransactionIfAbsent inserts a transaction row unless its dedup hash
// already exists. Returns whether a row was actually written.
func (b *Batch) InsertTransactionIfAbsent(t models.Transaction) (bool, error) {
	var balance interface{}
	if t.DailyBalance != nil {
		balance = t.DailyBalance.InexactFloat64()
	}
	res, err := b.insertTx.Exec(
		t.Date, t.Description, t.DescriptionNorm, t.Amount.InexactFloat64(), balance,
		t.MovementType, t.Category, t.CategoryDetail, t.Page, t.Line, t.UniqueHash,
	)
	if err != nil {
		return false, fmt.Errorf("error inserting transaction (hash %s): %w", t.UniqueHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading insert result: %w", err)
	}
	return n > 0, nil
}

// UpsertDailyBalance overwrites the balance snapshot for a date.
func (b *Batch) UpsertDailyBalance(date string, balance decimal.Decimal) error {
	if _, err := b.upsertBal.Exec(date, balance.InexactFloat64()); err != nil {
		return fmt.Errorf("error upserting daily balance for %s: %w", date, err)
	}
	return nil
}

func (b *Batch) Commit() error {
	b.done = true
	b.insertTx.Close()
	b.upsertBal.Close()
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("error committing ingestion batch: %w", err)
	}
	return nil
}

// Rollback is safe to defer; it is a no-op after Commit.
func (b *Batch) Rollback() {
	if b.done {
		return
	}
	b.insertTx.Close()
	b.upsertBal.Close()
	b.tx.Rollback()
}

// ListDailyBalances returns every daily balance ordered by date.
func (s *Store) ListDailyBalances() ([]models.DailyBalance, error) {
	rows, err := s.db.Query(`SELECT date, balance FROM v_daily_balance ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("error querying daily balances: %w", err)
	}
	defer rows.Close()

	var balances []models.DailyBalance
	for rows.Next() {
		var b models.DailyBalance
		var balance float64
		if err := rows.Scan(&b.Date, &balance); err != nil {
			return nil, fmt.Errorf("error scanning daily balance row: %w", err)
		}
		b.Balance = decimal.NewFromFloat(balance)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ListTransactions returns stored transactions matching the filter, newest
// first. Limit defaults to 100 and is capped at 500.
func (s *Store) ListTransactions(filter TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT id, date, description, description_norm, amount, daily_balance,
		movement_type, category, category_detail, page, line, unique_hash
		FROM transactions WHERE 1=1`
	var args []interface{}

	if filter.Date != "" {
		query += " AND date = ?"
		args = append(args, filter.Date)
	}
	if filter.MovementType != "" {
		query += " AND movement_type = ?"
		args = append(args, filter.MovementType)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	query += " ORDER BY date DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var amount float64
		var balance sql.NullFloat64
		var category, detail sql.NullString
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.DescriptionNorm, &amount,
			&balance, &t.MovementType, &category, &detail, &t.Page, &t.Line, &t.UniqueHash); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		t.Amount = decimal.NewFromFloat(amount)
		if balance.Valid {
			b := decimal.NewFromFloat(balance.Float64)
			t.DailyBalance = &b
		}
		if category.Valid {
			t.Category = &category.String
		}
		if detail.Valid {
			t.CategoryDetail = &detail.String
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CountTransactions reports the number of stored transaction rows.
func (s *Store) CountTransactions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting transactions: %w", err)
	}
	return n, nil
}
