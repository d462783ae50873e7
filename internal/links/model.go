package links

import (
	"time"

	"github.com/google/uuid"
)

// Link is a bookmarked resource on the dashboard.
type Link struct {
	ID          uuid.UUID
	Title       string
	URL         string
	Labels      []string
	AddedBy     string
	Description *string
	Clicks      int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time // nil until the first mutation
}

// Sort selects the ordering of a link listing.
type Sort string

const (
	SortPopular Sort = "popular" // clicks descending
	SortNew     Sort = "new"     // created_at descending
)

// LabelCount is one row of the label-frequency aggregation.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

const (
	DefaultLimit = 100
	MinLimit     = 1
	MaxLimit     = 500
)
