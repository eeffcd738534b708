package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/auth"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User is inactive")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Time record errors
	case errors.Is(err, timerecord.ErrRecordNotFound):
		NotFound(w, "Time record not found")
	case errors.Is(err, timerecord.ErrDuplicateClock):
		ConflictWithCode(w, "DUPLICATE_CLOCK", err.Error())
	case errors.Is(err, timerecord.ErrRecordExists):
		Conflict(w, err.Error())
	case errors.Is(err, timerecord.ErrNoOpenCheckIn),
		errors.Is(err, timerecord.ErrMaxShiftsReached),
		errors.Is(err, timerecord.ErrInvalidClockSequence):
		UnprocessableEntity(w, "INVALID_CLOCK_SEQUENCE", err.Error())
	case errors.Is(err, timerecord.ErrInvalidDirection):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timerecord.ErrApprovedReferenceRequired):
		UnprocessableEntity(w, "APPROVED_REFERENCE_REQUIRED", err.Error())

	// Period errors
	case errors.Is(err, period.ErrPeriodLocked):
		Locked(w, err.Error())
	case errors.Is(err, period.ErrInvalidRange),
		errors.Is(err, period.ErrRangeTooLarge):
		BadRequest(w, err.Error(), nil)

	// Request workflow errors
	case errors.Is(err, request.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, request.ErrInvalidRequest):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, request.ErrDuplicateRequest):
		ConflictWithCode(w, "DUPLICATE_REQUEST", err.Error())
	case errors.Is(err, request.ErrNotAuthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, request.ErrForbiddenView):
		Forbidden(w, err.Error())
	case errors.Is(err, request.ErrAlreadyTerminal):
		ConflictWithCode(w, "ALREADY_TERMINAL", err.Error())
	case errors.Is(err, request.ErrCannotWithdraw):
		ConflictWithCode(w, "CANNOT_WITHDRAW", err.Error())
	case errors.Is(err, database.ErrConcurrentModification):
		ConflictWithCode(w, "CONCURRENT_MODIFICATION", err.Error())

	// Sector errors
	case errors.Is(err, sector.ErrSectorNotFound):
		NotFound(w, "Sector not found")
	case errors.Is(err, sector.ErrSectorCodeExists):
		Conflict(w, err.Error())
	case errors.Is(err, sector.ErrSectorCycle):
		UnprocessableEntity(w, "SECTOR_CYCLE", err.Error())
	case errors.Is(err, sector.ErrSectorHasChildren):
		Conflict(w, err.Error())
	case errors.Is(err, sector.ErrNoResponsibleFound):
		UnprocessableEntity(w, "NO_RESPONSIBLE_FOUND", err.Error())

	// Schedule errors
	case errors.Is(err, schedule.ErrScheduleRuleNotFound):
		NotFound(w, "Schedule rule not found")
	case errors.Is(err, schedule.ErrInvalidScheduleRule):
		UnprocessableEntity(w, "INVALID_SCHEDULE_RULE", err.Error())
	case errors.Is(err, schedule.ErrScheduleOwnerExists):
		Conflict(w, err.Error())

	// Holiday errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayExists):
		Conflict(w, err.Error())
	case errors.Is(err, holiday.ErrInvalidImportYear):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, holiday.ErrSourceUnavailable):
		ServiceUnavailable(w, err.Error())

	// Notification errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
