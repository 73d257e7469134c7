package models

import "time"

// Event is a single posted listing. Date stays a free-form string: postings
// carry whatever the author typed ("2025-01-20", "каждую субботу"), it is
// never parsed as a calendar date.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Image       string    `json:"image"`
	Genre       string    `json:"genre"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
