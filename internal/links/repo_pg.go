package links

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"linksdash/internal/errx"
	"linksdash/internal/idgen"
)

const linkColumns = "id, title, url, labels, added_by, description, clicks, created_at, updated_at"

// querier is the subset of *pgxpool.Pool the repository needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repo struct {
	q   querier
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a PostgreSQL-backed Repository.
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7(idgen.WithRetries(1))
	}
	return &repo{
		q:   q,
		ids: config.IDGenerator,
	}
}

func scanLink(row pgx.Row) (Link, error) {
	var l Link
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.URL,
		&l.Labels,
		&l.AddedBy,
		&l.Description,
		&l.Clicks,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)
	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "links.repo.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		link.ID = id
	}
	if link.Labels == nil {
		link.Labels = []string{}
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO links (id, title, url, labels, added_by, description, clicks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+linkColumns,
		link.ID, link.Title, link.URL, link.Labels, link.AddedBy, link.Description, link.Clicks,
	)

	created, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *repo) List(ctx context.Context, filter ListFilter) ([]Link, error) {
	const op = "links.repo.List"

	query := "SELECT " + linkColumns + " FROM links"

	var (
		conds []string
		args  []any
	)
	if filter.Label != "" {
		args = append(args, filter.Label)
		conds = append(conds, fmt.Sprintf("$%d = ANY (labels)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR coalesce(description, '') ILIKE $%d)", n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch filter.Sort {
	case SortNew:
		query += " ORDER BY created_at DESC"
	default:
		query += " ORDER BY clicks DESC"
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	found := []Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		found = append(found, link)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return found, nil
}

// IncrementClick is a single atomic read-modify-write: concurrent increments
// on the same id serialize inside the store, so none are lost. updated_at
// uses the store's clock.
func (r *repo) IncrementClick(ctx context.Context, id uuid.UUID) (Link, error) {
	const op = "links.repo.IncrementClick"

	row := r.q.QueryRow(ctx, `
		UPDATE links
		SET clicks = clicks + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+linkColumns,
		id,
	)

	updated, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return updated, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (Link, error) {
	const op = "links.repo.Update"

	sets := []string{"updated_at = now()"}
	args := []any{id}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.URL != nil {
		args = append(args, *patch.URL)
		sets = append(sets, fmt.Sprintf("url = $%d", len(args)))
	}
	if patch.Labels != nil {
		args = append(args, *patch.Labels)
		sets = append(sets, fmt.Sprintf("labels = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	query := "UPDATE links SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 RETURNING " + linkColumns

	updated, err := scanLink(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return updated, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "links.repo.Delete"

	tag, err := r.q.Exec(ctx, "DELETE FROM links WHERE id = $1", id)
	if err != nil {
		return mapRepoError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return errx.E(op, errx.NotFound, errors.New("link not found"))
	}
	return nil
}

// AggregateLabels unnests every label occurrence and counts per distinct
// value. A link with a duplicated label contributes once per occurrence.
func (r *repo) AggregateLabels(ctx context.Context) ([]LabelCount, error) {
	const op = "links.repo.AggregateLabels"

	rows, err := r.q.Query(ctx, `
		SELECT label, count(*) AS total
		FROM links CROSS JOIN LATERAL unnest(labels) AS label
		GROUP BY label
		ORDER BY total DESC, label ASC`,
	)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	counts := []LabelCount{}
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, mapRepoError(op, err)
		}
		counts = append(counts, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return counts, nil
}

// escapeLike escapes LIKE metacharacters so a search needle matches
// literally inside the unanchored pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
