package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

// ClientsHandler handles /clients CRUD.
type ClientsHandler struct {
	repo     ports.ClientRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewClientsHandler(repo ports.ClientRepository, log zerolog.Logger) *ClientsHandler {
	return &ClientsHandler{repo: repo, validate: validator.New(), log: log}
}

type clientBody struct {
	Name    string          `json:"name" validate:"required,max=100"`
	NIF     string          `json:"nif" validate:"required,len=9,numeric"`
	Phone   string          `json:"phone" validate:"omitempty,max=20"`
	Email   *string         `json:"email" validate:"omitempty,email,max=254"`
	Address *domain.Address `json:"address"`
}

type clientResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	NIF       string          `json:"nif"`
	Phone     string          `json:"phone,omitempty"`
	Email     *string         `json:"email,omitempty"`
	Address   *domain.Address `json:"address,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		NIF:       c.NIF,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body clientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	existing, err := h.repo.GetByNIF(r.Context(), body.NIF)
	if err != nil {
		h.log.Error().Err(err).Msg("client lookup failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if existing != nil {
		writeErr(w, http.StatusConflict, "", "client with this NIF already exists")
		return
	}
	now := time.Now().UTC()
	client := &domain.Client{
		ID:        uuid.New(),
		Name:      body.Name,
		NIF:       body.NIF,
		Phone:     body.Phone,
		Email:     body.Email,
		Address:   body.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(r.Context(), client); err != nil {
		h.log.Error().Err(err).Msg("client create failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(client))
}

func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid client id")
		return
	}
	client, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if client == nil {
		writeErr(w, http.StatusNotFound, "", "client not found")
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client))
}

func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)
	clients, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		items = append(items, toClientResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": items})
}

func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid client id")
		return
	}
	var body clientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	client := &domain.Client{
		ID:      id,
		Name:    body.Name,
		NIF:     body.NIF,
		Phone:   body.Phone,
		Email:   body.Email,
		Address: body.Address,
	}
	if err := h.repo.Update(r.Context(), client); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "client not found")
			return
		}
		h.log.Error().Err(err).Msg("client update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid client id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "client not found")
			return
		}
		h.log.Error().Err(err).Msg("client delete failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
