package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReadOnlySQLAccepts(t *testing.T) {
	queries := []string{
		"SELECT date, balance FROM v_daily_balance ORDER BY date",
		"select * from transactions where movement_type = 'debit';",
		"WITH recent AS (SELECT * FROM transactions LIMIT 10) SELECT date FROM recent",
		"  SELECT count(*) FROM transactions  ",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			cleaned, err := ValidateReadOnlySQL(q)
			require.NoError(t, err)
			assert.NotEmpty(t, cleaned)
		})
	}
}

func TestValidateReadOnlySQLRejects(t *testing.T) {
	queries := []string{
		"",
		"   ;  ",
		"DELETE FROM transactions",
		"INSERT INTO transactions VALUES (1)",
		"DROP TABLE transactions",
		"PRAGMA foreign_keys = OFF",
		"SELECT 1; DROP TABLE transactions",
		"UPDATE transactions SET amount = 0",
		"ATTACH DATABASE 'x' AS y",
		"explain select 1",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			_, err := ValidateReadOnlySQL(q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSQLNotAllowed)
		})
	}
}

func TestValidateReadOnlySQLAllowsTransactionsTable(t *testing.T) {
	// The keyword blocklist must not trip over the table name.
	_, err := ValidateReadOnlySQL("SELECT * FROM transactions")
	assert.NoError(t, err)
}

func TestValidateReadOnlySQLTrimsTrailingSemicolon(t *testing.T) {
	cleaned, err := ValidateReadOnlySQL("SELECT 1;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", cleaned)
}
