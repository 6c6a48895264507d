package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
)

// InvoicesHandler emits and manages invoices. An invoice snapshots the
// client, vehicle, and items of a completed work order; later edits to the
// source records do not touch it.
type InvoicesHandler struct {
	invoices   ports.InvoiceRepository
	workOrders ports.WorkOrderRepository
	clients    ports.ClientRepository
	vehicles   ports.VehicleRepository
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewInvoicesHandler(invoices ports.InvoiceRepository, workOrders ports.WorkOrderRepository,
	clients ports.ClientRepository, vehicles ports.VehicleRepository, log zerolog.Logger) *InvoicesHandler {
	return &InvoicesHandler{
		invoices:   invoices,
		workOrders: workOrders,
		clients:    clients,
		vehicles:   vehicles,
		validate:   validator.New(),
		log:        log,
	}
}

type invoiceResponse struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	WorkOrderID string `json:"work_order_id"`
	ClientID    string `json:"client_id"`
	EmittedByID string `json:"emitted_by_id"`

	ClientName    string          `json:"client_name"`
	ClientNIF     string          `json:"client_nif"`
	ClientAddress *domain.Address `json:"client_address,omitempty"`
	VehiclePlate  string          `json:"vehicle_plate"`
	VehicleBrand  string          `json:"vehicle_brand"`
	VehicleModel  string          `json:"vehicle_model"`

	Items []domain.WorkOrderItem `json:"items"`

	TotalWithoutIVACents int64 `json:"total_without_iva_cents"`
	TotalIVACents        int64 `json:"total_iva_cents"`
	TotalWithIVACents    int64 `json:"total_with_iva_cents"`

	Status      domain.InvoiceStatus `json:"status"`
	InvoiceDate string               `json:"invoice_date"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	items := inv.Items
	if items == nil {
		items = []domain.WorkOrderItem{}
	}
	return invoiceResponse{
		ID:          inv.ID.String(),
		Number:      inv.Number,
		WorkOrderID: inv.WorkOrderID.String(),
		ClientID:    inv.ClientID.String(),
		EmittedByID: inv.EmittedByID.String(),

		ClientName:    inv.ClientName,
		ClientNIF:     inv.ClientNIF,
		ClientAddress: inv.ClientAddress,
		VehiclePlate:  inv.VehiclePlate,
		VehicleBrand:  inv.VehicleBrand,
		VehicleModel:  inv.VehicleModel,

		Items: items,

		TotalWithoutIVACents: inv.TotalWithoutIVACents,
		TotalIVACents:        inv.TotalIVACents,
		TotalWithIVACents:    inv.TotalWithIVACents,

		Status:      inv.Status,
		InvoiceDate: inv.InvoiceDate.Format(time.RFC3339),
	}
}

// Create emits an invoice for a completed work order and marks the order
// Invoiced.
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	emittedBy, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	var body struct {
		WorkOrderID string `json:"work_order_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	workOrderID, _ := uuid.Parse(body.WorkOrderID)
	wo, err := h.workOrders.GetByID(r.Context(), workOrderID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if wo == nil {
		writeErr(w, http.StatusNotFound, "", "work order not found")
		return
	}
	if wo.Status != domain.StatusCompleted {
		writeErr(w, http.StatusConflict, "", "work order is not completed")
		return
	}
	if wo.TotalWithoutIVACents == nil || wo.TotalIVACents == nil || wo.TotalWithIVACents == nil {
		writeErr(w, http.StatusConflict, "", "work order has no priced items")
		return
	}
	client, err := h.clients.GetByID(r.Context(), wo.ClientID)
	if err != nil || client == nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	vehicle, err := h.vehicles.GetByID(r.Context(), wo.VehicleID)
	if err != nil || vehicle == nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}

	now := time.Now().UTC()
	inv := &domain.Invoice{
		ID:          uuid.New(),
		Number:      "FT-" + strings.TrimPrefix(wo.Number, "OS-"),
		WorkOrderID: wo.ID,
		ClientID:    client.ID,
		EmittedByID: domain.NewUserID(emittedBy),

		ClientName:    client.Name,
		ClientNIF:     client.NIF,
		ClientAddress: client.Address,
		VehiclePlate:  vehicle.LicensePlate,
		VehicleBrand:  vehicle.Brand,
		VehicleModel:  vehicle.Model,

		Items: wo.Items,

		TotalWithoutIVACents: *wo.TotalWithoutIVACents,
		TotalIVACents:        *wo.TotalIVACents,
		TotalWithIVACents:    *wo.TotalWithIVACents,

		Status:      domain.InvoiceEmitted,
		InvoiceDate: now,
		CreatedAt:   now,
	}
	if err := h.invoices.Create(r.Context(), inv); err != nil {
		h.log.Error().Err(err).Msg("invoice create failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	wo.Status = domain.StatusInvoiced
	if err := h.workOrders.Update(r.Context(), wo); err != nil {
		// invoice exists either way; the order status can be fixed manually
		h.log.Error().Err(err).Str("work_order", wo.Number).Msg("mark invoiced failed")
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid invoice id")
		return
	}
	inv, err := h.invoices.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if inv == nil {
		writeErr(w, http.StatusNotFound, "", "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// ListByClient returns a client's invoices, newest first.
func (h *InvoicesHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(r.URL.Query().Get("client_id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid or missing client_id")
		return
	}
	limit, offset := parseListParams(r)
	invoices, err := h.invoices.ListByClient(r.Context(), clientID, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": items})
}

// SetStatus marks an invoice Paid or Canceled. The snapshot itself never
// changes.
func (h *InvoicesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid invoice id")
		return
	}
	var body struct {
		Status domain.InvoiceStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if body.Status != domain.InvoicePaid && body.Status != domain.InvoiceCanceled {
		writeErr(w, http.StatusBadRequest, "", "status must be Paid or Canceled")
		return
	}
	if err := h.invoices.SetStatus(r.Context(), id, body.Status); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "invoice not found")
			return
		}
		h.log.Error().Err(err).Msg("invoice status update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
