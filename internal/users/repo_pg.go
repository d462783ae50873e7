package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"linksdash/internal/errx"
	"linksdash/internal/idgen"
)

const userColumns = "id, name, email, avatar_url, created_at"

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

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	return u, err
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)
	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) Create(ctx context.Context, user User) (User, error) {
	const op = "users.repo.Create"

	if user.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return User{}, errx.E(op, errx.Unavailable, err)
		}
		user.ID = id
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.AvatarURL,
	)

	created, err := scanUser(row)
	if err != nil {
		return User{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	const op = "users.repo.GetByEmail"

	row := r.q.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1 ORDER BY created_at ASC LIMIT 1",
		email,
	)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapRepoError(op, err)
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]User, error) {
	const op = "users.repo.List"

	rows, err := r.q.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	found := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		found = append(found, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return found, nil
}
