// backend/src/handlers/inventory_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/manavault/backend/src/config"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/security/validation"
	"github.com/username/manavault/backend/src/services"
)

type InventoryHandler struct {
	inventoryService services.InventoryService
}

func NewInventoryHandler(inventoryService services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) HandleListInventory(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	listings, err := h.inventoryService.ListInventory(limit, offset)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "ListInventory failed", "error", err)
		sendJSONError(w, "Failed to get inventory", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"inventory": listings, "total": len(listings)}, http.StatusOK)
}

// HandleImportCSV ingests a ManaBox collection export. Staff only; the route
// is gated by RequireRole upstream.
func (h *InventoryHandler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		sendJSONError(w, fmt.Sprintf("Failed to process upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		ctxLogger.Warn("Uploaded file header reports size too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		sendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateCSVContent(file); err != nil {
		ctxLogger.Warn("CSV content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.inventoryService.ImportCSV(file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctxLogger.Error("CSV import failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		sendJSONError(w, "Import failed", http.StatusInternalServerError)
		return
	}

	ctxLogger.Info("CSV import completed", "userID", userID, "filename", fileHeader.Filename,
		"total", result.Total, "inserted", result.Inserted, "updated", result.Updated, "skipped", result.Skipped)
	writeJSON(w, result, http.StatusOK)
}
