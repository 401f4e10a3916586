package storage

import (
	"time"
)

// ArrayInfo describes a stored array without its samples.
type ArrayInfo struct {
	Name      string    `json:"name"`      // Unique array name
	Length    int       `json:"length"`    // Number of samples
	CreatedAt time.Time `json:"createdAt"` // When the array was first saved
	UpdatedAt time.Time `json:"updatedAt"` // When the array was last saved
}
