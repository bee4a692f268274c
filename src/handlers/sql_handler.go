package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/security/validation"
	"github.com/username/extratodb/src/utils"
)

// SQLHandler exposes a read-only query sandbox for the reporting UI.
type SQLHandler struct {
	db *sql.DB
}

func NewSQLHandler(db *sql.DB) *SQLHandler {
	return &SQLHandler{db: db}
}

type sqlRequest struct {
	SQL string `json:"sql"`
}

type sqlResponse struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

const sandboxRowLimit = 500

func (h *SQLHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Request body must be JSON with a 'sql' field.", http.StatusBadRequest)
		return
	}

	query, err := validation.ValidateReadOnlySQL(req.SQL)
	if err != nil {
		if errors.Is(err, validation.ErrSQLNotAllowed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "Invalid query.", http.StatusBadRequest)
		return
	}

	rows, err := h.db.Query(query)
	if err != nil {
		logger.L.Warn("Sandbox query failed", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		utils.SendJSONError(w, "Error reading query result.", http.StatusInternalServerError)
		return
	}

	resp := sqlResponse{Columns: columns, Rows: []map[string]interface{}{}}
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() && len(resp.Rows) < sandboxRowLimit {
		if err := rows.Scan(pointers...); err != nil {
			utils.SendJSONError(w, "Error scanning query result.", http.StatusInternalServerError)
			return
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	if err := rows.Err(); err != nil {
		utils.SendJSONError(w, "Error iterating query result.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.L.Error("Error encoding sandbox response", "error", err)
	}
}
