package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/models"
	"github.com/username/extratodb/src/services"
	"github.com/username/extratodb/src/utils"
)

type BalanceHandler struct {
	ingestService services.IngestService
}

func NewBalanceHandler(service services.IngestService) *BalanceHandler {
	return &BalanceHandler{ingestService: service}
}

// HandleGetDailyBalances returns the per-day balance snapshots ordered by
// date, with ETag support so the UI can poll cheaply.
func (h *BalanceHandler) HandleGetDailyBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ingestService.DailyBalances()
	if err != nil {
		logger.L.Error("Error retrieving daily balances", "error", err)
		utils.SendJSONError(w, "Error retrieving daily balances.", http.StatusInternalServerError)
		return
	}
	if balances == nil {
		balances = []models.DailyBalance{}
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, err := utils.GenerateETag(balances); err == nil && etag != "" {
		quotedETag := fmt.Sprintf("%q", etag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(balances); err != nil {
		logger.L.Error("Error encoding daily balances response", "error", err)
	}
}
