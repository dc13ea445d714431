package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tasknest/tasknest-backend/internal/api/httpx"
	"github.com/tasknest/tasknest-backend/internal/middleware"
	"github.com/tasknest/tasknest-backend/internal/services"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	u, token, err := h.users.Register(r.Context(), in)
	if err != nil {
		httpx.ServiceError(w, err, "Registration failed.")
		return
	}
	httpx.Success(w, http.StatusCreated, "Account created successfully.", httpx.M{
		"token": token,
		"user":  accountPayload(u),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	u, token, err := h.users.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		httpx.ServiceError(w, err, "Login failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "Login successful.", httpx.M{
		"token": token,
		"user":  accountPayload(u),
	})
}

// Logout handles POST /auth/logout. It revokes the session behind the
// presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}
	if err := h.users.Logout(r.Context(), sessionID); err != nil {
		httpx.ServiceError(w, err, "Logout failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "Logged out successfully.", nil)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())
	u, err := h.users.Profile(r.Context(), actor.ID)
	if err != nil {
		httpx.ServiceError(w, err, "Profile lookup failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "", httpx.M{"user": profilePayload(u)})
}

// UpdateProfile handles PATCH /auth/profile. Partial updates: only fields
// present in the body are touched.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.CurrentUser(r.Context())

	var in services.ProfileUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), actor.ID, in)
	if err != nil {
		httpx.ServiceError(w, err, "Profile update failed.")
		return
	}
	httpx.Success(w, http.StatusOK, "Profile updated successfully.", httpx.M{
		"user": profilePayload(u),
	})
}
