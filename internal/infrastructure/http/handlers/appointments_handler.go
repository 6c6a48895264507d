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

// AppointmentsHandler handles /appointments.
type AppointmentsHandler struct {
	appointments ports.AppointmentRepository
	clients      ports.ClientRepository
	validate     *validator.Validate
	log          zerolog.Logger
}

func NewAppointmentsHandler(appointments ports.AppointmentRepository, clients ports.ClientRepository, log zerolog.Logger) *AppointmentsHandler {
	return &AppointmentsHandler{appointments: appointments, clients: clients, validate: validator.New(), log: log}
}

type appointmentResponse struct {
	ID          string                   `json:"id"`
	ClientID    string                   `json:"client_id"`
	VehicleID   *string                  `json:"vehicle_id,omitempty"`
	WorkOrderID *string                  `json:"work_order_id,omitempty"`
	Notes       *string                  `json:"notes,omitempty"`
	Status      domain.AppointmentStatus `json:"status"`
	Date        string                   `json:"date"`
}

func toAppointmentResponse(a *domain.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:       a.ID.String(),
		ClientID: a.ClientID.String(),
		Notes:    a.Notes,
		Status:   a.Status,
		Date:     a.Date.Format(time.RFC3339),
	}
	if a.VehicleID != nil {
		s := a.VehicleID.String()
		resp.VehicleID = &s
	}
	if a.WorkOrderID != nil {
		s := a.WorkOrderID.String()
		resp.WorkOrderID = &s
	}
	return resp
}

func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID  string  `json:"client_id" validate:"required,uuid"`
		VehicleID *string `json:"vehicle_id" validate:"omitempty,uuid"`
		Date      string  `json:"date" validate:"required"`
		Notes     *string `json:"notes" validate:"omitempty,max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "date must be RFC 3339")
		return
	}
	clientID, _ := uuid.Parse(body.ClientID)
	client, err := h.clients.GetByID(r.Context(), clientID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if client == nil {
		writeErr(w, http.StatusNotFound, "", "client not found")
		return
	}
	var vehicleID *uuid.UUID
	if body.VehicleID != nil {
		id, _ := uuid.Parse(*body.VehicleID)
		vehicleID = &id
	}
	now := time.Now().UTC()
	appt := &domain.Appointment{
		ID:        uuid.New(),
		ClientID:  clientID,
		VehicleID: vehicleID,
		Notes:     body.Notes,
		Status:    domain.AppointmentScheduled,
		Date:      date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.appointments.Create(r.Context(), appt); err != nil {
		h.log.Error().Err(err).Msg("appointment create failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid appointment id")
		return
	}
	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if appt == nil {
		writeErr(w, http.StatusNotFound, "", "appointment not found")
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

// List returns appointments in the [from, to) window given as RFC 3339
// query parameters; defaults to the next 7 days.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 0, 7)
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "from must be RFC 3339")
			return
		}
		from = t.UTC()
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "to must be RFC 3339")
			return
		}
		to = t.UTC()
	}
	limit, offset := parseListParams(r)
	appts, err := h.appointments.ListBetween(r.Context(), from, to, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		items = append(items, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": items})
}

// Update reschedules an appointment or changes its status or notes.
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid appointment id")
		return
	}
	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if appt == nil {
		writeErr(w, http.StatusNotFound, "", "appointment not found")
		return
	}
	var body struct {
		Date   *string                   `json:"date"`
		Status *domain.AppointmentStatus `json:"status"`
		Notes  *string                   `json:"notes" validate:"omitempty,max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if body.Date != nil {
		t, err := time.Parse(time.RFC3339, *body.Date)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "date must be RFC 3339")
			return
		}
		appt.Date = t.UTC()
	}
	if body.Status != nil {
		switch *body.Status {
		case domain.AppointmentScheduled, domain.AppointmentCompleted, domain.AppointmentCancelled:
			appt.Status = *body.Status
		default:
			writeErr(w, http.StatusBadRequest, "", "unknown status")
			return
		}
	}
	if body.Notes != nil {
		appt.Notes = body.Notes
	}
	if err := h.appointments.Update(r.Context(), appt); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "appointment not found")
			return
		}
		h.log.Error().Err(err).Msg("appointment update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}
