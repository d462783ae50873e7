package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a contributor record.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	AvatarURL *string
	CreatedAt time.Time
}

const (
	DefaultLimit = 100
	MinLimit     = 1
	MaxLimit     = 500
)
