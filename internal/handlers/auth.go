package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"pokerstudy-backend/internal/middleware"
)

// AuthHandler exchanges the configured access passcode for a bearer token.
// Single user, no accounts: the passcode is hashed once at startup and every
// login compares against that hash.
type AuthHandler struct {
	jwtAuth      *middleware.JWTAuth
	passcodeHash []byte
}

func NewAuthHandler(jwtAuth *middleware.JWTAuth, passcode string) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{jwtAuth: jwtAuth, passcodeHash: hash}, nil
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passcodeHash, []byte(req.Passcode)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Wrong passcode", r))
		return
	}

	token, err := h.jwtAuth.GenerateAccessToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to issue token", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   12 * 60 * 60,
	})
}
