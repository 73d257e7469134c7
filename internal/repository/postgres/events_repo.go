package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-board/backend/internal/models"
	"github.com/afisha-board/backend/internal/repository"
)

type eventsRepo struct{ pool *pgxpool.Pool }

func NewEvents(pool *pgxpool.Pool) repository.Events {
	return &eventsRepo{pool: pool}
}

const eventColumns = `id, name, description, date, image, genre, owner_id, created_at, updated_at`

func (r *eventsRepo) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events(id, name, description, date, image, genre, owner_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Name, e.Description, e.Date, e.Image, e.Genre, e.OwnerID,
	)
	if err != nil {
		return models.Event{}, err
	}
	return r.GetByID(ctx, e.ID)
}

func (r *eventsRepo) GetByID(ctx context.Context, id string) (models.Event, error) {
	var e models.Event
	err := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id=$1`, id,
	).Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Image, &e.Genre, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Event{}, repository.ErrNotFound
	}
	return e, err
}

func (r *eventsRepo) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Image, &e.Genre, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update writes the full row, so a lost concurrent edit loses whole: the
// surviving record is always exactly one caller's field set.
func (r *eventsRepo) Update(ctx context.Context, e models.Event) (models.Event, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET name=$2, description=$3, date=$4, image=$5, genre=$6, updated_at=now()
		 WHERE id=$1`,
		e.ID, e.Name, e.Description, e.Date, e.Image, e.Genre,
	)
	if err != nil {
		return models.Event{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Event{}, repository.ErrNotFound
	}
	return r.GetByID(ctx, e.ID)
}

func (r *eventsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
