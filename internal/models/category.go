package models

import "time"

// Category groups tasks, transactions and budgets. Records reference it by
// raw ID only, so deleting a category never blocks archiving or restoring
// the records that pointed at it.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
