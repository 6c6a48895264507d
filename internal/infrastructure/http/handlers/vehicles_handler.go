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

// VehiclesHandler handles /vehicles CRUD.
type VehiclesHandler struct {
	vehicles ports.VehicleRepository
	clients  ports.ClientRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewVehiclesHandler(vehicles ports.VehicleRepository, clients ports.ClientRepository, log zerolog.Logger) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles, clients: clients, validate: validator.New(), log: log}
}

type vehicleBody struct {
	ClientID     string `json:"client_id" validate:"required,uuid"`
	LicensePlate string `json:"license_plate" validate:"required,max=12"`
	Brand        string `json:"brand" validate:"required,max=50"`
	Model        string `json:"model" validate:"required,max=50"`
	Kilometers   int32  `json:"kilometers" validate:"gte=0"`
	VIN          string `json:"vin" validate:"omitempty,len=17"`
}

type vehicleResponse struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Kilometers   int32  `json:"kilometers"`
	VIN          string `json:"vin,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toVehicleResponse(v *domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:           v.ID.String(),
		ClientID:     v.ClientID.String(),
		LicensePlate: v.LicensePlate,
		Brand:        v.Brand,
		Model:        v.Model,
		Kilometers:   v.Kilometers,
		VIN:          v.VIN,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body vehicleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	clientID, _ := uuid.Parse(body.ClientID)
	owner, err := h.clients.GetByID(r.Context(), clientID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if owner == nil {
		writeErr(w, http.StatusNotFound, "", "client not found")
		return
	}
	existing, err := h.vehicles.GetByLicensePlate(r.Context(), body.LicensePlate)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if existing != nil {
		writeErr(w, http.StatusConflict, "", "vehicle with this license plate already exists")
		return
	}
	now := time.Now().UTC()
	vehicle := &domain.Vehicle{
		ID:           uuid.New(),
		ClientID:     clientID,
		LicensePlate: body.LicensePlate,
		Brand:        body.Brand,
		Model:        body.Model,
		Kilometers:   body.Kilometers,
		VIN:          body.VIN,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.vehicles.Create(r.Context(), vehicle); err != nil {
		h.log.Error().Err(err).Msg("vehicle create failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toVehicleResponse(vehicle))
}

func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid vehicle id")
		return
	}
	vehicle, err := h.vehicles.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if vehicle == nil {
		writeErr(w, http.StatusNotFound, "", "vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, toVehicleResponse(vehicle))
}

// ListByClient returns the vehicles of the client given by the client_id
// query parameter.
func (h *VehiclesHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(r.URL.Query().Get("client_id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid or missing client_id")
		return
	}
	vehicles, err := h.vehicles.ListByClient(r.Context(), clientID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, toVehicleResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicles": items})
}

func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid vehicle id")
		return
	}
	var body vehicleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	vehicle := &domain.Vehicle{
		ID:           id,
		LicensePlate: body.LicensePlate,
		Brand:        body.Brand,
		Model:        body.Model,
		Kilometers:   body.Kilometers,
		VIN:          body.VIN,
	}
	if err := h.vehicles.Update(r.Context(), vehicle); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "vehicle not found")
			return
		}
		h.log.Error().Err(err).Msg("vehicle update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid vehicle id")
		return
	}
	if err := h.vehicles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "vehicle not found")
			return
		}
		h.log.Error().Err(err).Msg("vehicle delete failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
