package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"linksdash/internal/errx"
)

const MaxURLLength = 2048

// CreateLinkInput represents the parameters for creating a new link.
type CreateLinkInput struct {
	Title       string
	URL         string
	Labels      []string
	AddedBy     string
	Description *string
}

// UpdateLinkInput represents a partial update. Nil fields are left unchanged.
type UpdateLinkInput struct {
	Title       *string
	URL         *string
	Labels      *[]string
	Description *string
}

// ListParams narrows and orders a listing. The HTTP layer validates sort and
// limit before the service sees them; the service re-checks as a precondition.
type ListParams struct {
	Label  string
	Search string
	Sort   Sort
	Limit  int
}

// Service defines the business logic operations on links.
type Service interface {
	Create(ctx context.Context, in CreateLinkInput) (Link, error)
	List(ctx context.Context, params ListParams) ([]Link, error)
	IncrementClick(ctx context.Context, id string) (Link, error)
	Update(ctx context.Context, id string, in UpdateLinkInput) (Link, error)
	Delete(ctx context.Context, id string) error
	AggregateLabels(ctx context.Context) ([]LabelCount, error)
}

type service struct {
	repo Repository
}

// NewService creates a new service instance.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create validates the input, normalizes labels, and persists the link with
// clicks starting at zero.
func (s *service) Create(ctx context.Context, in CreateLinkInput) (Link, error) {
	const op = "links.service.Create"

	if strings.TrimSpace(in.Title) == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("title is required"))
	}
	if err := validateURL(in.URL); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}
	if strings.TrimSpace(in.AddedBy) == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("added_by is required"))
	}

	created, err := s.repo.Create(ctx, Link{
		Title:       in.Title,
		URL:         in.URL,
		Labels:      normalizeLabels(in.Labels),
		AddedBy:     in.AddedBy,
		Description: in.Description,
		Clicks:      0,
	})
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

// List returns links matching the filter, ordered per params.Sort.
func (s *service) List(ctx context.Context, params ListParams) ([]Link, error) {
	const op = "links.service.List"

	if params.Sort == "" {
		params.Sort = SortPopular
	}
	if params.Sort != SortPopular && params.Sort != SortNew {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("sort must be %q or %q", SortPopular, SortNew))
	}
	if params.Limit == 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit < MinLimit || params.Limit > MaxLimit {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("limit must be between %d and %d", MinLimit, MaxLimit))
	}

	found, err := s.repo.List(ctx, ListFilter{
		Label:  params.Label,
		Search: params.Search,
		Sort:   params.Sort,
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return found, nil
}

// IncrementClick atomically bumps the click counter by one and stamps
// updated_at, returning the post-update entity. The identifier is parsed
// before any store round-trip.
func (s *service) IncrementClick(ctx context.Context, id string) (Link, error) {
	const op = "links.service.IncrementClick"

	linkID, err := parseID(id)
	if err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	updated, err := s.repo.IncrementClick(ctx, linkID)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return updated, nil
}

// Update applies a partial update. A patch with no recognized fields is
// rejected without touching the store.
func (s *service) Update(ctx context.Context, id string, in UpdateLinkInput) (Link, error) {
	const op = "links.service.Update"

	linkID, err := parseID(id)
	if err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	patch := UpdatePatch{
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
	}
	if in.Labels != nil {
		normalized := normalizeLabels(*in.Labels)
		patch.Labels = &normalized
	}

	if patch.IsEmpty() {
		return Link{}, errx.E(op, errx.Invalid, errors.New("no fields provided"))
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("title cannot be empty"))
	}
	if patch.URL != nil {
		if err := validateURL(*patch.URL); err != nil {
			return Link{}, errx.E(op, errx.Invalid, err)
		}
	}

	updated, err := s.repo.Update(ctx, linkID, patch)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return updated, nil
}

// Delete removes the link. Deleting an already-deleted id reports NotFound.
func (s *service) Delete(ctx context.Context, id string) error {
	const op = "links.service.Delete"

	linkID, err := parseID(id)
	if err != nil {
		return errx.E(op, errx.Invalid, err)
	}

	if err := s.repo.Delete(ctx, linkID); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

// AggregateLabels returns every distinct label with the number of links
// carrying it, most frequent first, ties broken alphabetically.
func (s *service) AggregateLabels(ctx context.Context) ([]LabelCount, error) {
	const op = "links.service.AggregateLabels"

	counts, err := s.repo.AggregateLabels(ctx)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return counts, nil
}

// parseID parses an external identifier into a UUID.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid link id %q", raw)
	}
	return id, nil
}

// normalizeLabels trims every label and drops entries that are empty after
// trimming. Order, casing, and duplicates of survivors are preserved.
func normalizeLabels(labels []string) []string {
	normalized := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url is required")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("url too long (max %d characters)", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}
