package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined label used as the candidate set for
// classification. Name and Description feed the classification prompt, so
// they must be stable for the duration of a single categorization call.
type Category struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCategory(ownerID, name, description, color string) *Category {
	now := time.Now()
	return &Category{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
