package http

import (
	"encoding/json"
	"net/http"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type SectorHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ApprovalChain(w http.ResponseWriter, r *http.Request)
}

type sectorHandlerImpl struct {
	service  sector.SectorService
	resolver sector.Resolver
}

func NewSectorHandler(service sector.SectorService, resolver sector.Resolver) SectorHandler {
	return &sectorHandlerImpl{service: service, resolver: resolver}
}

// Create implements SectorHandler.
func (h *sectorHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req sector.CreateSectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	ids := bodyIDs(map[string]*string{"parent_id": req.ParentID, "responsible_id": req.ResponsibleID})
	if err := validator.Merge(ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Sector created successfully", created)
}

// Get implements SectorHandler.
func (h *sectorHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
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

// List implements SectorHandler.
func (h *sectorHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	parentID, err := idQuery(r, "parent_id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := sector.SectorFilter{
		ParentID:   parentID,
		ActiveOnly: getBoolQueryParam(r, "active_only", false),
		Search:     optionalQuery(r, "search"),
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, list)
}

// Update implements SectorHandler.
func (h *sectorHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req sector.UpdateSectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	id, idErr := idParam(r, "id")
	req.ID = id
	ids := bodyIDs(map[string]*string{"parent_id": req.ParentID, "responsible_id": req.ResponsibleID})
	if err := validator.Merge(idErr, ids, req.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Sector updated successfully", updated)
}

// Delete implements SectorHandler.
func (h *sectorHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Sector deleted successfully", nil)
}

// ApprovalChain shows who approves requests of {userId}, in order.
func (h *sectorHandlerImpl) ApprovalChain(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	userID, err := userParam(r, caller)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !caller.canAccess(userID, user.PermissionPeriodViewAll) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	chain, err := h.resolver.ResolveApprovalChain(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	links := make([]sector.ChainLinkResponse, 0, len(chain))
	for _, l := range chain {
		links = append(links, sector.ChainLinkResponse{Role: string(l.Role), ApproverID: l.ApproverID})
	}
	response.Success(w, sector.ApprovalChainResponse{UserID: userID, Chain: links})
}
