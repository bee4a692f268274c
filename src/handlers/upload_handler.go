package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/username/extratodb/src/config"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/security/validation"
	"github.com/username/extratodb/src/services"
	"github.com/username/extratodb/src/utils"
)

type UploadHandler struct {
	ingestService services.IngestService
}

func NewUploadHandler(service services.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: service}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		source = config.Cfg.DefaultSource
	}

	data := &bytes.Buffer{}
	if _, err := data.ReadFrom(file); err != nil {
		logger.L.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file.", http.StatusInternalServerError)
		return
	}

	// Keep the raw statement on disk next to the database, like any other
	// source document. A copy failure is logged but does not block ingestion.
	if err := saveRawStatement(fileHeader.Filename, data.Bytes()); err != nil {
		logger.L.Warn("Failed to archive raw statement", "filename", fileHeader.Filename, "error", err)
	}

	logger.L.Info("Processing upload request", "filename", fileHeader.Filename, "source", source)
	result, err := h.ingestService.IngestStatement(bytes.NewReader(data.Bytes()), source)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Upload failed during statement parsing", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing statement: %v", err), http.StatusBadRequest)
		} else {
			logger.L.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "error", err)
	}
}

func saveRawStatement(filename string, data []byte) error {
	if err := os.MkdirAll(config.Cfg.DataRawDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(config.Cfg.DataRawDir, filepath.Base(filename))
	return os.WriteFile(out, data, 0o644)
}
