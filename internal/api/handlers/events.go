package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/skillstage/server/internal/api/middleware"
	"github.com/skillstage/server/internal/api/respond"
	"github.com/skillstage/server/internal/audit"
	"github.com/skillstage/server/internal/domain/events"
)

// EventsHandler serves event and module management. The router restricts
// every route here to the tech-expert role.
type EventsHandler struct {
	events   *events.Service
	env      string
	audit    *audit.Logger
	validate *validator.Validate
}

func NewEventsHandler(service *events.Service, env string, auditLog *audit.Logger) *EventsHandler {
	return &EventsHandler{
		events:   service,
		env:      env,
		audit:    auditLog,
		validate: validator.New(),
	}
}

type createEventRequest struct {
	Name  string `json:"name" validate:"required"`
	Count *int   `json:"count" validate:"required"`
}

type deleteEventRequest struct {
	EventID string `json:"eventId" validate:"required"`
}

type createModuleRequest struct {
	Name    string `json:"name" validate:"required"`
	EventID string `json:"eventId" validate:"required"`
}

type deleteModuleRequest struct {
	ModuleID string `json:"moduleId" validate:"required"`
}

// CreateEvent handles POST /api/admin/events.
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide name and count", err, h.env)
		return
	}

	var createdBy string
	if claims := middleware.Claims(r); claims != nil {
		createdBy = claims.Subject
	}

	event, err := h.events.CreateEvent(r.Context(), req.Name, *req.Count, createdBy)
	if err != nil {
		status, message := mapEventError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	respond.JSON(w, http.StatusCreated, "Event created successfully", respond.Envelope{
		"event": event,
	})
}

// ListEvents handles GET /api/admin/events.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.ListEvents(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Server error", err, h.env)
		return
	}

	respond.JSON(w, http.StatusOK, "", respond.Envelope{
		"count":  len(list),
		"events": list,
	})
}

// GetEvent handles GET /api/admin/events/{eventId}.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("eventId")
	if id == "" {
		respond.Error(w, r, http.StatusBadRequest, "Please provide eventId", nil, h.env)
		return
	}

	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		status, message := mapEventError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	respond.JSON(w, http.StatusOK, "", respond.Envelope{"event": event})
}

// DeleteEvent handles DELETE /api/admin/events. Modules belonging to the
// event are removed with it.
func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var req deleteEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide eventId", err, h.env)
		return
	}

	if err := h.events.DeleteEvent(r.Context(), req.EventID); err != nil {
		status, message := mapEventError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	h.audit.Success(r, actor(r), "event.delete", "event", req.EventID)
	respond.JSON(w, http.StatusOK, "Event deleted successfully", nil)
}

// CreateModule handles POST /api/admin/modules.
func (h *EventsHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req createModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide name and eventId", err, h.env)
		return
	}

	var createdBy string
	if claims := middleware.Claims(r); claims != nil {
		createdBy = claims.Subject
	}

	module, err := h.events.CreateModule(r.Context(), req.Name, req.EventID, createdBy)
	if err != nil {
		status, message := mapEventError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	respond.JSON(w, http.StatusCreated, "Module created successfully", respond.Envelope{
		"module": module,
	})
}

// DeleteModule handles DELETE /api/admin/modules.
func (h *EventsHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	var req deleteModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide moduleId", err, h.env)
		return
	}

	if err := h.events.DeleteModule(r.Context(), req.ModuleID); err != nil {
		status, message := mapEventError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	h.audit.Success(r, actor(r), "module.delete", "module", req.ModuleID)
	respond.JSON(w, http.StatusOK, "Module deleted successfully", nil)
}
