package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
	"github.com/AndreFerreira5/starranja/internal/domain"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
)

// UsersHandler handles /users/*. Requires the auth middleware.
type UsersHandler struct {
	userRepo ports.UserRepository
}

func NewUsersHandler(userRepo ports.UserRepository) *UsersHandler {
	return &UsersHandler{userRepo: userRepo}
}

// MeResponse is the JSON shape for GET /users/me (no password material).
type MeResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     *string  `json:"email,omitempty"`
	FullName  string   `json:"full_name"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}

// Me returns the current user resolved from the verified token claims.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), domain.NewUserID(userID))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, "", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     claims.Roles,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}
