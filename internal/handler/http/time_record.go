package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type TimeRecordHandler interface {
	Clock(w http.ResponseWriter, r *http.Request)
	ManualEntry(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type timeRecordHandlerImpl struct {
	service timerecord.Service
	now     func() time.Time
}

func NewTimeRecordHandler(service timerecord.Service) TimeRecordHandler {
	return &timeRecordHandlerImpl{service: service, now: time.Now}
}

// Clock records a check-in or check-out for the caller at the server time.
func (h *timeRecordHandlerImpl) Clock(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req timerecord.ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	ids := bodyIDs(map[string]*string{"user_id": &req.UserID, "request_id": &req.RequestID})
	if err := validator.Merge(ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.service.RecordClock(r.Context(), caller.UserID, h.now(), timerecord.Direction(req.Direction))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock event recorded", timerecord.ToResponse(rec))
}

// ManualEntry registers a whole day on behalf of a user, backed by an approved request.
func (h *timeRecordHandlerImpl) ManualEntry(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req timerecord.ManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	ids := bodyIDs(map[string]*string{"user_id": &req.UserID, "request_id": &req.RequestID})
	if err := validator.Merge(ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.service.RecordManualEntry(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("manual time record created", "record_id", rec.ID, "user_id", rec.UserID, "created_by", caller.UserID)
	response.Created(w, "Manual entry recorded", timerecord.ToResponse(rec))
}

// List returns the active records of a user in [start, end].
func (h *timeRecordHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requested, err := idQuery(r, "user_id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	userID := caller.UserID
	if requested != nil {
		userID = *requested
	}
	if !caller.canAccess(userID, user.PermissionTimeRecordViewAll) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	start, end, _, err := dateRangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.service.ListRecords(r.Context(), userID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]timerecord.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, timerecord.ToResponse(rec))
	}
	response.Success(w, out)
}
