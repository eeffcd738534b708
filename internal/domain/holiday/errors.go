package holiday

import "errors"

var (
	ErrHolidayNotFound   = errors.New("holiday not found")
	ErrHolidayExists     = errors.New("holiday already registered for this date and scope")
	ErrSourceUnavailable = errors.New("holiday source unavailable")
	ErrInvalidImportYear = errors.New("invalid import year")
)
