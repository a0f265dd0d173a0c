package model

import "time"

// Forecast is a date-keyed item shown on the calendar view. Dates are
// day-granular; ForecastDate is stored as a DATE column.
type Forecast struct {
	ID           uint64    `json:"id"`
	OwnerID      uint64    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ForecastDate time.Time `json:"forecast_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
