package models

import "time"

// Transaction directions.
const (
	DirectionIncome  = "income"
	DirectionExpense = "expense"
)

// Transaction is a single financial operation. Amount is in minor units
// (cents). CategoryID is a soft reference kept as a raw identifier.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Direction  string    `json:"direction"`
	CategoryID string    `json:"category_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
