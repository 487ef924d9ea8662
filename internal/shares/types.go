package shares

import (
	"errors"
	"time"
)

// MaxContentSize is the largest diagram source accepted for sharing.
const MaxContentSize = 256 << 10

var (
	// ErrNotFound is returned when no share has the requested ID.
	ErrNotFound = errors.New("share not found")
	// ErrInvalid is returned for shares that fail validation.
	ErrInvalid = errors.New("invalid share")
)

// Share is a stored diagram that can be opened read-only by its ID.
type Share struct {
	ShareID   string    `json:"share_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
