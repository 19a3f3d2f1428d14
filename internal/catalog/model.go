package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("course not found")
	ErrInvalid  = errors.New("invalid course")
)

// Course is a curated catalog entry maintained by staff.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
