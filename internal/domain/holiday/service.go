package holiday

import "context"

type HolidayService interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	List(ctx context.Context, filter HolidayFilter) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, year int) (ImportResult, error)
}

// Fetcher fetches the national holidays of a year from an external provider.
type Fetcher interface {
	FetchNational(ctx context.Context, year int) ([]Holiday, error)
}
