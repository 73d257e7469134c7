package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afisha-board/backend/internal/api/httpx"
	"github.com/afisha-board/backend/internal/api/validate"
	"github.com/afisha-board/backend/internal/media"
	"github.com/afisha-board/backend/internal/middleware"
	"github.com/afisha-board/backend/internal/models"
	"github.com/afisha-board/backend/internal/services"
)

const maxUploadMemory = 10 << 20 // 10 MiB buffered in memory, rest spills to disk

type EventsHandler struct {
	events *services.EventService
}

func NewEventsHandler(events *services.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	in, closeUpload, err := eventInputFromForm(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	defer closeUpload()

	created, err := h.events.Create(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	in, closeUpload, err := eventInputFromForm(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	defer closeUpload()

	updated, err := h.events.Edit(r.Context(), uid, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
		return
	}

	if err := h.events.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventInputFromForm reads the multipart form. The returned closer releases
// the upload's file handle and is safe to call when no file was attached.
func eventInputFromForm(r *http.Request) (services.EventInput, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return services.EventInput{}, func() {}, err
	}

	in := services.EventInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Genre:       r.FormValue("genre"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return in, func() {}, nil
	}
	in.Image = &media.Upload{Filename: header.Filename, Data: file}
	return in, func() { _ = file.Close() }, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "event not found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "you do not own this event", nil)
	case errors.Is(err, services.ErrFileRejected):
		httpx.WriteError(w, http.StatusBadRequest, "file_rejected", err.Error(), nil)
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation", "validation failed", verrs)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
