package http

import (
	"encoding/json"
	"net/http"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type ScheduleHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	service schedule.ScheduleService
}

func NewScheduleHandler(service schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{service: service}
}

// Create implements ScheduleHandler.
func (h *scheduleHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	ids := bodyIDs(map[string]*string{"user_id": req.UserID, "sector_id": req.SectorID})
	if err := validator.Merge(ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule rule created successfully", created)
}

// Get implements ScheduleHandler.
func (h *scheduleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// List implements ScheduleHandler.
func (h *scheduleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, userErr := idQuery(r, "user_id")
	sectorID, sectorErr := idQuery(r, "sector_id")
	if err := validator.Merge(userErr, sectorErr); err != nil {
		response.HandleError(w, err)
		return
	}

	filter := schedule.RuleFilter{
		UserID:   userID,
		SectorID: sectorID,
		Type:     optionalQuery(r, "type"),
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// Update implements ScheduleHandler.
func (h *scheduleHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, idErr := idParam(r, "id")
	req.ID = id
	ids := bodyIDs(map[string]*string{"user_id": req.UserID, "sector_id": req.SectorID})
	if err := validator.Merge(idErr, ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule rule updated successfully", updated)
}

// Delete implements ScheduleHandler.
func (h *scheduleHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Schedule rule deleted successfully", nil)
}
