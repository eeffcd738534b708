package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/dashboard"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type DashboardHandler interface {
	GetSectorSummary(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	service dashboard.DashboardService
}

func NewDashboardHandler(service dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{service: service}
}

// GetSectorSummary summarizes a sector's team. Heads only see their own sector.
func (h *dashboardHandlerImpl) GetSectorSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFromContext(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	q := dashboard.SectorSummaryQuery{
		SectorID: chi.URLParam(r, "sectorId"),
		Start:    r.URL.Query().Get("start"),
		End:      r.URL.Query().Get("end"),
		AsOf:     r.URL.Query().Get("as_of"),
	}
	if err := validator.Merge(validator.UUID("sectorId", q.SectorID), q.Validate()); err != nil {
		response.HandleError(w, err)
		return
	}

	if caller.Role == user.RoleChefia && (caller.SectorID == nil || *caller.SectorID != q.SectorID) {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}

	start, end, asOf := q.Dates()
	summary, err := h.service.GetSectorSummary(r.Context(), q.SectorID, start, end, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}
