package holidayapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/config"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
)

// Client reads national holidays from a BrasilAPI compatible endpoint:
// GET {baseURL}/{year} returning [{"date":"2024-01-01","name":"...","type":"national"}].
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.HolidayAPIConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// APIError represents a non-2xx answer from the holiday service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("holiday API error [%d]: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return holiday.ErrSourceUnavailable
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// FetchNational implements holiday.Fetcher.
func (c *Client) FetchNational(ctx context.Context, year int) ([]holiday.Holiday, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", holiday.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var payload []holidayPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", holiday.ErrSourceUnavailable, err)
	}

	holidays := make([]holiday.Holiday, 0, len(payload))
	for _, p := range payload {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", holiday.ErrSourceUnavailable, p.Date)
		}
		if p.Type != "" && p.Type != "national" {
			continue
		}
		holidays = append(holidays, holiday.Holiday{
			Date:   date,
			Name:   p.Name,
			Scope:  holiday.ScopeNational,
			Active: true,
			Source: holiday.SourceAPI,
		})
	}
	return holidays, nil
}
