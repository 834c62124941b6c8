// backend/src/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/username/manavault/backend/src/config"
	"github.com/username/manavault/backend/src/database"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/model"
	"github.com/username/manavault/backend/src/security"
	"github.com/username/manavault/backend/src/security/validation"
)

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.Username = validation.SanitizeText(req.Username)
	if err := validation.ValidateUsername(req.Username); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := model.GetUserByEmail(database.DB, strings.ToLower(req.Email)); err == nil {
		sendJSONError(w, "A user with this email already exists", http.StatusConflict)
		return
	} else if !errors.Is(err, model.ErrUserNotFound) {
		logger.ErrorFromContext(r.Context(), "Register: user lookup failed", "error", err)
		sendJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
	}
	// Addresses on the ADMIN_EMAILS list bootstrap straight into the admin
	// role; everyone else starts as a customer.
	if config.Cfg.IsAdminEmail(user.Email) {
		user.Role = model.RoleAdmin
	}
	if err := user.HashPassword(req.Password); err != nil {
		logger.ErrorFromContext(r.Context(), "Register: password hashing failed", "error", err)
		sendJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		logger.ErrorFromContext(r.Context(), "Register: insert failed", "error", err)
		sendJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "User registered", "userID", user.ID, "email", user.Email)
	writeJSON(w, map[string]any{"message": "User created successfully", "userId": user.ID}, http.StatusCreated)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		sendJSONError(w, "Email and password required", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByEmail(database.DB, strings.ToLower(req.Email))
	if err != nil {
		// Same answer for unknown email and wrong password.
		sendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		logger.WarnFromContext(r.Context(), "Login: password mismatch", "userID", user.ID)
		sendJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Login: token issuing failed", "error", err)
		sendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "User logged in", "userID", user.ID)
	writeJSON(w, loginResponse{Token: token, User: user}, http.StatusOK)
}

// HandleGetMe returns the authenticated user's profile, including the trade
// counters that drive the verified-trader badge.
func (h *UserHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "GetMe: lookup failed", "error", err)
		sendJSONError(w, "Error retrieving user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
