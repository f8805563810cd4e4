package models

import "time"

// Task is a to-do item. CategoryID is a soft reference kept as a raw
// identifier; the category may be deleted while the task is archived.
type Task struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Title      string     `json:"title"`
	Details    string     `json:"details,omitempty"`
	CategoryID string     `json:"category_id,omitempty"`
	Done       bool       `json:"done"`
	Priority   int        `json:"priority"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}
