package repository

import (
	"context"
	"errors"

	"github.com/afisha-board/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type Events interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	GetByID(ctx context.Context, id string) (models.Event, error)
	// List returns all events in insertion order; repeated calls without
	// mutation return the same order.
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, e models.Event) (models.Event, error)
	Delete(ctx context.Context, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
