package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/afisha-board/backend/internal/api/validate"
	"github.com/afisha-board/backend/internal/media"
	"github.com/afisha-board/backend/internal/metrics"
	"github.com/afisha-board/backend/internal/models"
	repo "github.com/afisha-board/backend/internal/repository"
	"github.com/afisha-board/backend/internal/worker"
)

// EventInput carries the submitted fields of a posting. Image is nil when the
// request had no file attached.
type EventInput struct {
	Name        string
	Description string
	Date        string
	Genre       string
	Image       *media.Upload
}

// EventService owns the catalog of postings: list, create, edit, delete.
type EventService struct {
	events repo.Events
	audits repo.AuditLogs
	intake *media.Intake
	pool   *worker.Pool

	// enforceOwnership gates edit/delete to the owner. The board historically
	// lets any authenticated user modify any posting; flipping this on turns
	// the shared board into a per-owner one.
	enforceOwnership bool
}

func NewEventService(events repo.Events, audits repo.AuditLogs, intake *media.Intake, pool *worker.Pool, enforceOwnership bool) *EventService {
	return &EventService{
		events:           events,
		audits:           audits,
		intake:           intake,
		pool:             pool,
		enforceOwnership: enforceOwnership,
	}
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.events.List(ctx)
}

func (s *EventService) Get(ctx context.Context, id string) (models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Event{}, ErrNotFound
	}
	return e, err
}

// Create validates the fields, runs the upload through media intake and
// persists the posting attributed to ownerID. A missing or rejected image
// fails the whole request with ErrFileRejected.
func (s *EventService) Create(ctx context.Context, ownerID string, in EventInput) (models.Event, error) {
	if err := validateFields(in); err != nil {
		return models.Event{}, err
	}

	out, err := s.intake.Accept(ctx, in.Image)
	if err != nil {
		return models.Event{}, fmt.Errorf("storing image: %w", err)
	}
	if !out.Stored {
		metrics.UploadsRejectedTotal.Inc()
		return models.Event{}, fmt.Errorf("%w: %s", ErrFileRejected, out.Reason)
	}

	created, err := s.events.Create(ctx, models.Event{
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Image:       out.Ref,
		Genre:       in.Genre,
		OwnerID:     ownerID,
	})
	if err != nil {
		return models.Event{}, err
	}

	metrics.EventActionsTotal.WithLabelValues("create").Inc()
	s.audit("create", created.ID, ownerID, map[string]any{"name": created.Name})
	return created, nil
}

// Edit updates all text fields of an existing posting. A valid new upload
// replaces the image reference; a rejected or absent one retains the previous
// reference, which is the documented board behavior.
func (s *EventService) Edit(ctx context.Context, actorID, id string, in EventInput) (models.Event, error) {
	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	if s.enforceOwnership && current.OwnerID != actorID {
		return models.Event{}, ErrForbidden
	}
	if err := validateFields(in); err != nil {
		return models.Event{}, err
	}

	image := current.Image
	if in.Image != nil {
		out, err := s.intake.Accept(ctx, in.Image)
		if err != nil {
			return models.Event{}, fmt.Errorf("storing image: %w", err)
		}
		if out.Stored {
			image = out.Ref
		} else {
			metrics.UploadsRejectedTotal.Inc()
			slog.Info("upload rejected, keeping previous image",
				"event_id", id, "reason", out.Reason)
		}
	}

	updated, err := s.events.Update(ctx, models.Event{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Image:       image,
		Genre:       in.Genre,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}

	metrics.EventActionsTotal.WithLabelValues("edit").Inc()
	s.audit("edit", id, actorID, map[string]any{"name": updated.Name})
	return updated, nil
}

// Delete removes the posting. Stored media is left behind on purpose: the
// board never garbage-collects uploaded files.
func (s *EventService) Delete(ctx context.Context, actorID, id string) error {
	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.enforceOwnership && current.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	metrics.EventActionsTotal.WithLabelValues("delete").Inc()
	s.audit("delete", id, actorID, map[string]any{"name": current.Name})
	return nil
}

// audit enqueues a best-effort audit row; failures are logged, never
// propagated to the request.
func (s *EventService) audit(action, eventID, actorID string, details map[string]any) {
	s.pool.Submit(func() {
		l := models.AuditLog{
			EntityType: "event",
			EntityID:   &eventID,
			Action:     action,
			ActorID:    actorID,
			Details:    details,
		}
		if err := s.audits.Create(context.Background(), l); err != nil {
			slog.Error("audit write", "action", action, "event_id", eventID, "err", err)
		}
	})
}

func validateFields(in EventInput) error {
	var errs validate.Errs
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"date", in.Date},
		{"genre", in.Genre},
	} {
		if ef := validate.Required(f.name, f.value); ef != nil {
			errs = append(errs, *ef)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
