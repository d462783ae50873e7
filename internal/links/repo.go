package links

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows and orders a link listing. Zero-value string fields mean
// "no filter"; Limit must already be within bounds when it reaches the repo.
type ListFilter struct {
	Label  string
	Search string
	Sort   Sort
	Limit  int
}

// UpdatePatch carries the fields of a partial update. Nil pointers leave the
// corresponding column untouched.
type UpdatePatch struct {
	Title       *string
	URL         *string
	Labels      *[]string
	Description *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p UpdatePatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Labels == nil && p.Description == nil
}

// Repository defines the persistence operations for Link entities. It
// abstracts the underlying data store; filtering, sorting and aggregation
// are performed by the store, not in memory.
type Repository interface {
	Create(ctx context.Context, link Link) (Link, error)
	List(ctx context.Context, filter ListFilter) ([]Link, error)
	IncrementClick(ctx context.Context, id uuid.UUID) (Link, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (Link, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AggregateLabels(ctx context.Context) ([]LabelCount, error)
}
