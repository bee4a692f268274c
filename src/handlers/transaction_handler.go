package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/username/extratodb/src/database"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/models"
	"github.com/username/extratodb/src/services"
	"github.com/username/extratodb/src/utils"
)

type TransactionHandler struct {
	ingestService services.IngestService
}

func NewTransactionHandler(service services.IngestService) *TransactionHandler {
	return &TransactionHandler{ingestService: service}
}

// HandleGetTransactions lists stored transactions, optionally filtered by
// ?date=yyyy-mm-dd, ?type=credit|debit, ?category=..., ?limit=n.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	movementType := q.Get("type")
	if movementType != "" && movementType != models.MovementCredit && movementType != models.MovementDebit {
		utils.SendJSONError(w, "type must be 'credit' or 'debit'", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			utils.SendJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	filter := database.TransactionFilter{
		Date:         q.Get("date"),
		MovementType: movementType,
		Category:     q.Get("category"),
		Limit:        limit,
	}

	txs, err := h.ingestService.Transactions(filter)
	if err != nil {
		logger.L.Error("Error retrieving transactions", "error", err)
		utils.SendJSONError(w, "Error retrieving transactions.", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(txs); err != nil {
		logger.L.Error("Error encoding transactions response", "error", err)
	}
}
