package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

// conflictAttempts bounds how often a decision is replayed after losing an optimistic version race.
const conflictAttempts = 3

type RequestHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	workflow request.WorkflowService
}

func NewRequestHandler(workflow request.WorkflowService) RequestHandler {
	return &requestHandlerImpl{workflow: workflow}
}

// retryOnConflict replays fn while it fails with a concurrent modification.
func retryOnConflict(ctx context.Context, fn func() (request.Request, error)) (request.Request, error) {
	var (
		result request.Request
		err    error
	)
	for attempt := 1; attempt <= conflictAttempts; attempt++ {
		result, err = fn()
		if !errors.Is(err, database.ErrConcurrentModification) {
			return result, err
		}
		slog.Warn("request modified concurrently, retrying", "attempt", attempt)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}
	return result, err
}

// Submit opens a request for the caller, or for another user with the on-behalf permission.
func (h *requestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req request.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.RequesterID == "" {
		req.RequesterID = caller.UserID
	} else if err := validator.UUID("user_id", req.RequesterID); err != nil {
		response.HandleError(w, err)
		return
	}
	if req.RequesterID != caller.UserID && !caller.can(user.PermissionRequestOnBehalf) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}
	req.SubmittedBy = caller.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.workflow.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Request submitted successfully", request.ToResponse(created))
}

// ListMine lists the caller's own requests, optionally filtered by type and status.
func (h *requestHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := request.RequestFilter{
		Type:   optionalQuery(r, "type"),
		Status: optionalQuery(r, "status"),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	list, err := h.workflow.ListMine(r.Context(), caller.UserID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request.ToResponses(list))
}

// ListPending lists the open requests waiting on the caller's decision.
func (h *requestHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	list, err := h.workflow.ListPendingFor(r.Context(), caller.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request.ToResponses(list))
}

// Get returns a request to its requester, its submitter, anyone in its chain or HR.
func (h *requestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	found, err := h.workflow.Get(r.Context(), requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canView(caller, found) {
		response.HandleError(w, request.ErrForbiddenView)
		return
	}

	response.Success(w, request.ToResponse(found))
}

func canView(caller identity, r request.Request) bool {
	if caller.UserID == r.RequesterID || caller.UserID == r.SubmittedBy {
		return true
	}
	if caller.can(user.PermissionRequestOnBehalf) {
		return true
	}
	for _, link := range r.Chain {
		if link.ApproverID == caller.UserID {
			return true
		}
	}
	return false
}

// Decide records the caller's approval or rejection of the next step.
func (h *requestHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req request.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	requestID, idErr := idParam(r, "id")
	req.RequestID = requestID
	req.ApproverID = caller.UserID

	if err := validator.Merge(idErr, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	decided, err := retryOnConflict(r.Context(), func() (request.Request, error) {
		return h.workflow.Decide(r.Context(), req)
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", request.ToResponse(decided))
}

// Withdraw cancels an open request of the caller.
func (h *requestHandlerImpl) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	withdrawn, err := retryOnConflict(r.Context(), func() (request.Request, error) {
		return h.workflow.Withdraw(r.Context(), requestID, caller.UserID)
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request withdrawn", request.ToResponse(withdrawn))
}
