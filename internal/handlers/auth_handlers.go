package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
)

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN: register")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.auth.Register(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, err, "register")
		return
	}
	responseWithJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN: login")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), request.Username, request.Password, request.RememberMe)
	if err != nil {
		handleServiceError(w, err, "login")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.LoginResponse{
		UserID:    result.User.ID,
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
	})
}

// Verify reports the identity behind the presented token; the auth
// middleware has already validated it by the time we get here.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	responseWithJSON(w, http.StatusOK, map[string]any{
		"message": "token is valid",
		"userId":  userID,
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var request dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.auth.UpdateProfile(r.Context(), userID,
		request.CurrentPassword, request.NewPassword, request.NewUsername)
	if err != nil {
		handleServiceError(w, err, "update_profile")
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"message": "profile updated successfully"})
}
