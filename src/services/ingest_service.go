package services

import (
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/extratodb/src/database"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/models"
	"github.com/username/extratodb/src/parsers"
	"github.com/username/extratodb/src/processors"
	"github.com/username/extratodb/src/utils"
)

const (
	ckDailyBalances = "res_daily_balances"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ingestServiceImpl struct {
	store       *database.Store
	classifier  *processors.Classifier
	reportCache *cache.Cache
}

func NewIngestService(store *database.Store, classifier *processors.Classifier, reportCache *cache.Cache) IngestService {
	return &ingestServiceImpl{
		store:       store,
		classifier:  classifier,
		reportCache: reportCache,
	}
}

// IngestStatement runs one synchronous pass over a statement file. All writes
// happen inside a single database transaction; a monetary token that fails
// numeric parsing aborts the whole document, since it means the extracted
// page text is not trustworthy.
func (s *ingestServiceImpl) IngestStatement(file io.Reader, source string) (*IngestResult, error) {
	startTime := time.Now()
	logger.L.Info("IngestStatement START", "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result, err := s.ingestRecords(source, records)
	if err != nil {
		return nil, err
	}

	logger.L.Info("IngestStatement END",
		"source", source,
		"recordsParsed", result.RecordsParsed,
		"inserted", result.TransactionsInserted,
		"duplicates", result.DuplicatesSkipped,
		"balances", result.BalancesUpserted,
		"duration", time.Since(startTime))
	return result, nil
}

// ingestRecords persists one batch of parsed records transactionally.
func (s *ingestServiceImpl) ingestRecords(source string, records []models.ParsedRecord) (*IngestResult, error) {
	batch, err := s.store.BeginBatch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	defer batch.Rollback()

	result := &IngestResult{Source: source, RecordsParsed: len(records)}
	for _, r := range records {
		// Balance snapshots only feed the daily_balances table; they are not
		// account movements and get no transaction row.
		if r.Amount == nil {
			if r.DailyBalance == nil {
				logger.L.Warn("Degenerate balance snapshot, nothing to store",
					"date", r.Date, "page", r.Page, "line", r.Line)
				continue
			}
			balance, err := utils.ParseAmount(*r.DailyBalance)
			if err != nil {
				return nil, fmt.Errorf("%w: page %d line %d: %v", ErrParsingFailed, r.Page, r.Line, err)
			}
			if err := batch.UpsertDailyBalance(r.Date, balance); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
			}
			result.BalancesUpserted++
			continue
		}

		tx, err := s.buildTransaction(r)
		if err != nil {
			return nil, err
		}

		inserted, err := batch.InsertTransactionIfAbsent(tx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		if inserted {
			result.TransactionsInserted++
		} else {
			logger.L.Debug("Skipping duplicate transaction", "hash", tx.UniqueHash, "date", tx.Date)
			result.DuplicatesSkipped++
		}
	}

	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	s.reportCache.Delete(ckDailyBalances)
	return result, nil
}

// buildTransaction normalizes, classifies and fingerprints one parsed
// transaction record (r.Amount is non-nil by the time we get here).
func (s *ingestServiceImpl) buildTransaction(r models.ParsedRecord) (models.Transaction, error) {
	normDesc := utils.NormalizeText(r.Description)

	amount, err := utils.ParseAmount(*r.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: page %d line %d: %v", ErrParsingFailed, r.Page, r.Line, err)
	}

	category, detail, movementType := s.classifier.Classify(normDesc, amount)

	return models.Transaction{
		Date:            r.Date,
		Description:     r.Description,
		DescriptionNorm: normDesc,
		Amount:          amount,
		MovementType:    movementType,
		Category:        category,
		CategoryDetail:  detail,
		Page:            r.Page,
		Line:            r.Line,
		UniqueHash:      processors.UniqueHash(r.Date, normDesc, amount),
	}, nil
}

func (s *ingestServiceImpl) DailyBalances() ([]models.DailyBalance, error) {
	if cached, found := s.reportCache.Get(ckDailyBalances); found {
		logger.L.Debug("Cache hit for daily balances")
		return cached.([]models.DailyBalance), nil
	}

	balances, err := s.store.ListDailyBalances()
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(ckDailyBalances, balances, DefaultCacheExpiration)
	return balances, nil
}

func (s *ingestServiceImpl) Transactions(filter database.TransactionFilter) ([]models.Transaction, error) {
	return s.store.ListTransactions(filter)
}
