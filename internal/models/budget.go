package models

import "time"

// Budget caps spending for a category over a period. LimitAmount is in
// minor units. CategoryID is a soft reference kept as a raw identifier.
type Budget struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"category_id,omitempty"`
	LimitAmount int64     `json:"limit_amount"`
	Currency    string    `json:"currency"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	CreatedAt   time.Time `json:"created_at"`
}
