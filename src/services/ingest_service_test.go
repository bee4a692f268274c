package services

import (
	"database/sql"
	"os"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/extratodb/src/database"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/models"
	"github.com/username/extratodb/src/processors"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (*ingestServiceImpl, *database.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureSchema(db))

	store := database.NewStore(db)
	svc := &ingestServiceImpl{
		store:       store,
		classifier:  processors.NewClassifier(),
		reportCache: cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	}
	return svc, store
}

func strptr(s string) *string { return &s }

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func statementRecords() []models.ParsedRecord {
	return []models.ParsedRecord{
		{Date: "2024-03-04", Description: "APLICAÇÃO CDB DI", Amount: strptr("-500,00"), Page: 1, Line: 3},
		{Date: "2024-03-05", Description: "PIX TRANSF João", Amount: strptr("-61,20"), Page: 1, Line: 5},
		{Date: "2024-03-05", Description: "RESGATE CDB DI", Amount: strptr("1.234,56"), Page: 1, Line: 6},
		{Date: "2024-03-05", Description: "SALDO DO DIA", DailyBalance: strptr("91,24"), Page: 1, Line: 7},
	}
}

func TestIngestRecords(t *testing.T) {
	svc, store := newTestService(t)

	result, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)
	assert.Equal(t, 4, result.RecordsParsed)
	assert.Equal(t, 3, result.TransactionsInserted)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	assert.Equal(t, 1, result.BalancesUpserted)

	balances, err := store.ListDailyBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "2024-03-05", balances[0].Date)
	assert.True(t, balances[0].Balance.Equal(dec("91.24")), "got %s", balances[0].Balance)
}

func TestIngestRecordsIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)

	// Re-ingesting the same statement must not duplicate anything.
	result, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TransactionsInserted)
	assert.Equal(t, 3, result.DuplicatesSkipped)

	n, err := store.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	balances, err := store.ListDailyBalances()
	require.NoError(t, err)
	assert.Len(t, balances, 1)
}

func TestIngestRecordsClassifies(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)

	redemptions, err := store.ListTransactions(database.TransactionFilter{Category: "investment_redemption"})
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, models.MovementCredit, redemptions[0].MovementType)
	require.NotNil(t, redemptions[0].CategoryDetail)
	assert.Equal(t, "CDB DI", *redemptions[0].CategoryDetail)

	// Accent-stripped normalization feeds the keyword match.
	contributions, err := store.ListTransactions(database.TransactionFilter{Category: "investment_contribution"})
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, "APLICACAO CDB DI", contributions[0].DescriptionNorm)
	assert.Equal(t, models.MovementDebit, contributions[0].MovementType)
}

func TestIngestRecordsSnapshotProducesNoTransactionRow(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)

	rows, err := store.ListTransactions(database.TransactionFilter{Date: "2024-03-05"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, "SALDO DO DIA", row.Description)
	}

	balances, err := store.ListDailyBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(dec("91.24")))
}

func TestIngestRecordsDegenerateSnapshotStoresNothing(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ingestRecords("itau", []models.ParsedRecord{
		{Date: "2024-03-05", Description: "SALDO DO DIA", Page: 1, Line: 1},
	})
	require.NoError(t, err)

	n, err := store.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	balances, err := store.ListDailyBalances()
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestIngestRecordsInvalidAmountAborts(t *testing.T) {
	svc, store := newTestService(t)

	records := []models.ParsedRecord{
		{Date: "2024-03-05", Description: "PIX", Amount: strptr("-61,20"), Page: 1, Line: 1},
		{Date: "2024-03-05", Description: "BROKEN", Amount: strptr("61,2O"), Page: 1, Line: 2},
	}
	_, err := svc.ingestRecords("itau", records)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)

	// The batch rolled back: nothing was stored.
	n, err := store.CountTransactions()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDailyBalancesCacheInvalidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ingestRecords("itau", statementRecords())
	require.NoError(t, err)

	balances, err := svc.DailyBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)

	// New snapshot for the same date overwrites, and the cached read goes
	// away with the ingestion.
	_, err = svc.ingestRecords("itau", []models.ParsedRecord{
		{Date: "2024-03-05", Description: "SALDO DO DIA", DailyBalance: strptr("150,00"), Page: 1, Line: 1},
	})
	require.NoError(t, err)

	balances, err = svc.DailyBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(dec("150.00")), "got %s", balances[0].Balance)
}
