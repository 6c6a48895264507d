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
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
)

// WorkOrdersHandler handles the work order lifecycle. A vehicle can have at
// most one active work order.
type WorkOrdersHandler struct {
	workOrders ports.WorkOrderRepository
	vehicles   ports.VehicleRepository
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewWorkOrdersHandler(workOrders ports.WorkOrderRepository, vehicles ports.VehicleRepository, log zerolog.Logger) *WorkOrdersHandler {
	return &WorkOrdersHandler{workOrders: workOrders, vehicles: vehicles, validate: validator.New(), log: log}
}

type workOrderResponse struct {
	ID          string                 `json:"id"`
	Number      string                 `json:"number"`
	ClientID    string                 `json:"client_id"`
	VehicleID   string                 `json:"vehicle_id"`
	CreatedByID string                 `json:"created_by_id"`
	MechanicIDs []string               `json:"mechanic_ids"`
	Status      domain.WorkOrderStatus `json:"status"`
	IsActive    bool                   `json:"is_active"`
	Quote       *domain.Quote          `json:"quote,omitempty"`
	Items       []domain.WorkOrderItem `json:"items"`

	TotalWithoutIVACents *int64 `json:"total_without_iva_cents,omitempty"`
	TotalIVACents        *int64 `json:"total_iva_cents,omitempty"`
	TotalWithIVACents    *int64 `json:"total_with_iva_cents,omitempty"`

	EntryDate             string  `json:"entry_date"`
	DiagnosisRegisteredAt *string `json:"diagnosis_registered_at,omitempty"`
	QuoteApprovedAt       *string `json:"quote_approved_at,omitempty"`
	CompletedAt           *string `json:"completed_at,omitempty"`
	DeliveredAt           *string `json:"delivered_at,omitempty"`
}

func toWorkOrderResponse(wo *domain.WorkOrder) workOrderResponse {
	mechanics := make([]string, 0, len(wo.MechanicIDs))
	for _, m := range wo.MechanicIDs {
		mechanics = append(mechanics, m.String())
	}
	items := wo.Items
	if items == nil {
		items = []domain.WorkOrderItem{}
	}
	return workOrderResponse{
		ID:          wo.ID.String(),
		Number:      wo.Number,
		ClientID:    wo.ClientID.String(),
		VehicleID:   wo.VehicleID.String(),
		CreatedByID: wo.CreatedByID.String(),
		MechanicIDs: mechanics,
		Status:      wo.Status,
		IsActive:    wo.IsActive,
		Quote:       wo.Quote,
		Items:       items,

		TotalWithoutIVACents: wo.TotalWithoutIVACents,
		TotalIVACents:        wo.TotalIVACents,
		TotalWithIVACents:    wo.TotalWithIVACents,

		EntryDate:             wo.EntryDate.Format(time.RFC3339),
		DiagnosisRegisteredAt: formatTimePtr(wo.DiagnosisRegisteredAt),
		QuoteApprovedAt:       formatTimePtr(wo.QuoteApprovedAt),
		CompletedAt:           formatTimePtr(wo.CompletedAt),
		DeliveredAt:           formatTimePtr(wo.DeliveredAt),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func (h *WorkOrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	createdBy, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	var body struct {
		VehicleID string `json:"vehicle_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	vehicleID, _ := uuid.Parse(body.VehicleID)
	vehicle, err := h.vehicles.GetByID(r.Context(), vehicleID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if vehicle == nil {
		writeErr(w, http.StatusNotFound, "", "vehicle not found")
		return
	}
	active, err := h.workOrders.GetActiveByVehicle(r.Context(), vehicleID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if active != nil {
		writeErr(w, http.StatusConflict, "", "vehicle already has an active work order")
		return
	}
	number, err := h.workOrders.NextNumber(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("work order number allocation failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	now := time.Now().UTC()
	wo := &domain.WorkOrder{
		ID:          uuid.New(),
		Number:      number,
		ClientID:    vehicle.ClientID,
		VehicleID:   vehicleID,
		CreatedByID: domain.NewUserID(createdBy),
		Status:      domain.StatusAwaitingDiagnostic,
		IsActive:    true,
		EntryDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.workOrders.Create(r.Context(), wo); err != nil {
		h.log.Error().Err(err).Msg("work order create failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toWorkOrderResponse(wo))
}

func (h *WorkOrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid work order id")
		return
	}
	wo, err := h.workOrders.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if wo == nil {
		writeErr(w, http.StatusNotFound, "", "work order not found")
		return
	}
	writeJSON(w, http.StatusOK, toWorkOrderResponse(wo))
}

func (h *WorkOrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.WorkOrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeErr(w, http.StatusBadRequest, "", "unknown status")
		return
	}
	limit, offset := parseListParams(r)
	orders, err := h.workOrders.List(r.Context(), status, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]workOrderResponse, 0, len(orders))
	for _, wo := range orders {
		items = append(items, toWorkOrderResponse(wo))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"work_orders": items})
}

type quoteBody struct {
	Diagnostic         string                 `json:"diagnostic" validate:"required,max=2000"`
	ClientObservations *string                `json:"client_observations" validate:"omitempty,max=2000"`
	Items              []domain.WorkOrderItem `json:"items" validate:"required,min=1"`
}

// SetQuote registers the diagnostic and the quoted line items, moving the
// order to AwaitingApproval. Totals are recomputed from the items.
func (h *WorkOrdersHandler) SetQuote(w http.ResponseWriter, r *http.Request) {
	wo, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	var body quoteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if wo.Status != domain.StatusAwaitingDiagnostic && wo.Status != domain.StatusAwaitingApproval {
		writeErr(w, http.StatusConflict, "", "work order is not awaiting a diagnostic")
		return
	}
	for i := range body.Items {
		item := &body.Items[i]
		if item.Type != domain.ItemTypePart && item.Type != domain.ItemTypeLabor {
			writeErr(w, http.StatusBadRequest, "", "unknown item type")
			return
		}
		if item.Quantity <= 0 || item.UnitPriceCents < 0 || item.IVARateBP < 0 {
			writeErr(w, http.StatusBadRequest, "", "invalid item quantity or price")
			return
		}
		item.TotalPriceCents = int64(item.Quantity) * item.UnitPriceCents
	}
	now := time.Now().UTC()
	wo.Quote = &domain.Quote{
		Diagnostic:         &body.Diagnostic,
		ClientObservations: body.ClientObservations,
	}
	wo.Items = body.Items
	subtotal, iva := itemTotals(body.Items)
	total := subtotal + iva
	wo.TotalWithoutIVACents = &subtotal
	wo.TotalIVACents = &iva
	wo.TotalWithIVACents = &total
	wo.Status = domain.StatusAwaitingApproval
	if wo.DiagnosisRegisteredAt == nil {
		wo.DiagnosisRegisteredAt = &now
	}
	h.persist(w, r, wo)
}

// Decide records the customer's answer to the quote: Approved or Declined.
// A declined order goes inactive.
func (h *WorkOrdersHandler) Decide(w http.ResponseWriter, r *http.Request) {
	wo, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	var body struct {
		Approved bool `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if wo.Status != domain.StatusAwaitingApproval {
		writeErr(w, http.StatusConflict, "", "work order is not awaiting approval")
		return
	}
	now := time.Now().UTC()
	if body.Approved {
		wo.Status = domain.StatusApproved
		wo.QuoteApprovedAt = &now
		if wo.Quote != nil {
			wo.Quote.IsApproved = true
		}
	} else {
		wo.Status = domain.StatusDeclined
		wo.IsActive = false
	}
	h.persist(w, r, wo)
}

type mechanicsBody struct {
	MechanicIDs []string `json:"mechanic_ids" validate:"required,min=1,dive,uuid"`
}

// AssignMechanics replaces the set of mechanics working the order.
func (h *WorkOrdersHandler) AssignMechanics(w http.ResponseWriter, r *http.Request) {
	wo, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	var body mechanicsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	mechanics := make([]domain.UserID, 0, len(body.MechanicIDs))
	for _, raw := range body.MechanicIDs {
		id, _ := uuid.Parse(raw)
		mechanics = append(mechanics, domain.NewUserID(id))
	}
	wo.MechanicIDs = mechanics
	h.persist(w, r, wo)
}

// UpdateStatus advances the order through its lifecycle. Terminal states
// (Delivered, Declined, Cancelled) also deactivate the order so the vehicle
// can open a new one.
func (h *WorkOrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	wo, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	var body struct {
		Status domain.WorkOrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if !body.Status.Valid() {
		writeErr(w, http.StatusBadRequest, "", "unknown status")
		return
	}
	if !wo.IsActive {
		writeErr(w, http.StatusConflict, "", "work order is closed")
		return
	}
	now := time.Now().UTC()
	wo.Status = body.Status
	switch body.Status {
	case domain.StatusCompleted:
		wo.CompletedAt = &now
	case domain.StatusDelivered:
		wo.DeliveredAt = &now
		wo.IsActive = false
	case domain.StatusDeclined, domain.StatusCancelled:
		wo.IsActive = false
	}
	h.persist(w, r, wo)
}

func (h *WorkOrdersHandler) loadOrder(w http.ResponseWriter, r *http.Request) (*domain.WorkOrder, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid work order id")
		return nil, false
	}
	wo, err := h.workOrders.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return nil, false
	}
	if wo == nil {
		writeErr(w, http.StatusNotFound, "", "work order not found")
		return nil, false
	}
	return wo, true
}

func (h *WorkOrdersHandler) persist(w http.ResponseWriter, r *http.Request, wo *domain.WorkOrder) {
	if err := h.workOrders.Update(r.Context(), wo); err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "", "work order not found")
			return
		}
		h.log.Error().Err(err).Str("work_order", wo.Number).Msg("work order update failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toWorkOrderResponse(wo))
}

// itemTotals sums the line items. IVA is rounded half up per line, in cents.
func itemTotals(items []domain.WorkOrderItem) (subtotal, iva int64) {
	for _, item := range items {
		subtotal += item.TotalPriceCents
		iva += (item.TotalPriceCents*int64(item.IVARateBP) + 5000) / 10000
	}
	return subtotal, iva
}
