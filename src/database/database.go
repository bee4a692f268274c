package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/extratodb/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

const schemaDDL = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	description TEXT NOT NULL,
	description_norm TEXT NOT NULL,
	amount REAL NOT NULL,
	daily_balance REAL,
	movement_type TEXT NOT NULL,
	category TEXT,
	category_detail TEXT,
	page INTEGER,
	line INTEGER,
	unique_hash TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);

CREATE TABLE IF NOT EXISTS daily_balances (
	date TEXT PRIMARY KEY,
	balance REAL NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE VIEW IF NOT EXISTS v_daily_balance AS
SELECT date, balance FROM daily_balances;
`

// InitDB opens the SQLite database and ensures the schema exists.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if _, err := DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		stdlog.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := EnsureSchema(DB); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.", "databasePath", databasePath)
	} else {
		stdlog.Println("Database tables ensured/created:", databasePath)
	}
}

// EnsureSchema applies the DDL to an already-open database. Split out from
// InitDB so tests can run against their own in-memory connection.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	return err
}
