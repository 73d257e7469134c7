package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afisha-board/backend/internal/auth"
	"github.com/afisha-board/backend/internal/config"
	"github.com/afisha-board/backend/internal/media"
	"github.com/afisha-board/backend/internal/models"
	repo "github.com/afisha-board/backend/internal/repository"
	"github.com/afisha-board/backend/internal/services"
	"github.com/afisha-board/backend/internal/session"
	"github.com/afisha-board/backend/internal/worker"
)

// --- in-memory repositories ---

type memUsersRepo struct{ users map[string]models.User }

func (f *memUsersRepo) Create(_ context.Context, username, passwordHash string) (models.User, error) {
	if _, ok := f.users[username]; ok {
		return models.User{}, repo.ErrDuplicate
	}
	u := models.User{ID: username + "-id", Username: username, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *memUsersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (f *memUsersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

type memEventsRepo struct {
	events map[string]models.Event
	order  []string
	nextID int
}

func (f *memEventsRepo) Create(_ context.Context, e models.Event) (models.Event, error) {
	f.nextID++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.events[e.ID] = e
	f.order = append(f.order, e.ID)
	return e, nil
}

func (f *memEventsRepo) GetByID(_ context.Context, id string) (models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return models.Event{}, repo.ErrNotFound
	}
	return e, nil
}

func (f *memEventsRepo) List(_ context.Context) ([]models.Event, error) {
	out := make([]models.Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.events[id])
	}
	return out, nil
}

func (f *memEventsRepo) Update(_ context.Context, e models.Event) (models.Event, error) {
	current, ok := f.events[e.ID]
	if !ok {
		return models.Event{}, repo.ErrNotFound
	}
	e.OwnerID = current.OwnerID
	f.events[e.ID] = e
	return e, nil
}

func (f *memEventsRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.events, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type memAuditRepo struct{}

func (memAuditRepo) Create(context.Context, models.AuditLog) error { return nil }

type memBlobStore struct{}

func (memBlobStore) Save(_ context.Context, _ string, data io.Reader) error {
	_, err := io.ReadAll(data)
	return err
}

// --- harness ---

type apiFixture struct {
	handler http.Handler
	pool    *worker.Pool
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	cfg := config.Config{
		Env:        "test",
		SessionTTL: time.Hour,
	}
	pool := worker.NewPool(1)
	t.Cleanup(pool.Stop)

	gate := session.NewGate(auth.NewTokenManager("test-secret", cfg.SessionTTL), session.NewMemoryStore())
	users := services.NewUserService(&memUsersRepo{users: map[string]models.User{}})
	events := services.NewEventService(
		&memEventsRepo{events: map[string]models.Event{}},
		memAuditRepo{}, media.NewIntake(memBlobStore{}), pool, false)

	return &apiFixture{
		handler: NewRouter(cfg, Deps{Users: users, Events: events, Gate: gate}),
		pool:    pool,
	}
}

func (f *apiFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonReq(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartReq(t *testing.T, method, path, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (f *apiFixture) register(t *testing.T, username, password string) {
	t.Helper()
	rec := f.do(t, jsonReq(t, http.MethodPost, "/register", map[string]string{
		"username": username, "password": password,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (f *apiFixture) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := f.do(t, jsonReq(t, http.MethodPost, "/login", map[string]string{
		"username": username, "password": password,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

var eventFields = map[string]string{
	"name":        "Концерт",
	"description": "Большой летний концерт",
	"date":        "2025-01-20",
	"genre":       "рок",
}

// --- tests ---

func TestRegisterDuplicate(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")

	rec := f.do(t, jsonReq(t, http.MethodPost, "/register", map[string]string{
		"username": "masha", "password": "pw2",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate_username")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")

	wrongPw := f.do(t, jsonReq(t, http.MethodPost, "/login", map[string]string{
		"username": "masha", "password": "nope",
	}))
	noUser := f.do(t, jsonReq(t, http.MethodPost, "/login", map[string]string{
		"username": "ghost", "password": "pw",
	}))

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)
	assert.Equal(t, wrongPw.Body.String(), noUser.Body.String())
}

func TestListingRedirectsWithoutSession(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestMutationRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, multipartReq(t, http.MethodPost, "/events", "poster.png", eventFields))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")
	cookie := f.login(t, "masha", "pw")

	// create
	req := multipartReq(t, http.MethodPost, "/events", "poster.png", eventFields)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "poster.png", created.Image)
	assert.Equal(t, "masha-id", created.OwnerID)

	// list includes it
	req = httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(cookie)
	rec = f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// edit without a new image keeps the old reference
	fields := map[string]string{
		"name":        "Концерт (перенос)",
		"description": eventFields["description"],
		"date":        "2025-02-01",
		"genre":       eventFields["genre"],
	}
	req = multipartReq(t, http.MethodPut, "/events/"+created.ID, "", fields)
	req.AddCookie(cookie)
	rec = f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Концерт (перенос)", updated.Name)
	assert.Equal(t, "poster.png", updated.Image)

	// another authenticated user may delete on the shared board
	f.register(t, "petya", "pw")
	otherCookie := f.login(t, "petya", "pw")
	req = httptest.NewRequest(http.MethodDelete, "/events/"+created.ID, nil)
	req.AddCookie(otherCookie)
	rec = f.do(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateWithDisallowedExtension(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")
	cookie := f.login(t, "masha", "pw")

	req := multipartReq(t, http.MethodPost, "/events", "payload.exe", eventFields)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file_rejected")
}

func TestCreateWithMalformedMultipartBody(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")
	cookie := f.login(t, "masha", "pw")

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte("not a multipart body")))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.AddCookie(cookie)
	rec := f.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestEditUnknownEvent(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")
	cookie := f.login(t, "masha", "pw")

	req := multipartReq(t, http.MethodPut, "/events/missing", "", eventFields)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "masha", "pw")
	cookie := f.login(t, "masha", "pw")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := f.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// the old cookie no longer resolves
	req = httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(cookie)
	rec = f.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// logging out twice is fine
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec = f.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
