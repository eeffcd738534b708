package http

import (
	"net/http"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/response"
)

type PeriodHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type periodHandlerImpl struct {
	service period.Service
}

func NewPeriodHandler(service period.Service) PeriodHandler {
	return &periodHandlerImpl{service: service}
}

// Get computes the period summary of {userId}; "me" selects the caller.
func (h *periodHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
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

	start, end, asOf, err := dateRangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	p, err := h.service.ComputePeriod(r.Context(), userID, start, end, asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, period.ToResponse(p))
}
