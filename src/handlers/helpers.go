// backend/src/handlers/helpers.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/database"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/model"
	"github.com/username/manavault/backend/src/utils"
)

type contextKey string

const (
	userIDContextKey   contextKey = "userID"
	userRoleContextKey contextKey = "userRole"
)

// GetUserIDFromContext extracts the authenticated user ID placed there by
// AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

// GetUserRoleFromContext extracts the authenticated user's role.
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(userRoleContextKey).(string)
	return role, ok
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	utils.SendJSONError(w, message, statusCode)
}

func writeJSON(w http.ResponseWriter, payload any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// fetchUser loads a user row for the current request, logging failures with
// the request-scoped logger.
func fetchUser(r *http.Request, userID int64) (*model.User, error) {
	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "user lookup failed", "userID", userID, "error", err)
		return nil, err
	}
	return user, nil
}

// decimalFromStored parses a money column stored as TEXT. Empty values,
// which predate the price backfill, read as zero.
func decimalFromStored(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", raw, err)
	}
	return value, nil
}

// decodeJSONBody parses a request body into dst with unknown fields
// rejected, so typos in client payloads fail fast instead of silently
// dropping data.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
