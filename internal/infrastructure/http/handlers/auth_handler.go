package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/application/auth"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	register *auth.Register
	login    *auth.Login
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.Register, login *auth.Login, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string  `json:"username" validate:"required,min=3,max=50"`
		Password string  `json:"password" validate:"required,max=128"`
		FullName string  `json:"full_name" validate:"required,max=100"`
		Email    *string `json:"email" validate:"omitempty,email,max=254"`
		Role     string  `json:"role" validate:"required,oneof=mecanico mecanico_gerente gerente admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	username := SanitizeUsername(body.Username)
	if username == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid username")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Username: username,
		Password: body.Password,
		FullName: body.FullName,
		Email:    body.Email,
		Role:     body.Role,
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", "", false, err.Error())
		middleware.RecordAuthAttempt("register", false)
		switch {
		case errors.Is(err, domerrors.ErrUserExists):
			writeErr(w, http.StatusConflict, "", err.Error())
		case domerrors.KindOf(err) == domerrors.KindInvalidPassword:
			writeErr(w, http.StatusBadRequest, "", err.Error())
		default:
			h.log.Error().Err(err).Msg("register failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         result.User.ID.String(),
		"username":   result.User.Username,
		"email":      result.User.Email,
		"full_name":  result.User.FullName,
		"created_at": result.User.CreatedAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Username: SanitizeUsername(body.Username),
		Password: body.Password,
	})
	if err != nil {
		AuditLog(h.log, r, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		// Unknown user, wrong password, and roleless accounts all answer
		// the same; nothing leaks which one it was.
		if errors.Is(err, domerrors.ErrInvalidCredentials) || errors.Is(err, domerrors.ErrNoRoles) {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, domerrors.ErrInvalidCredentials.Error())
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
	})
}
