package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	sessions  map[string]*Session
	createErr error
	held      map[string]bool // "date|time"
}

func newStubRepo() *stubRepo {
	return &stubRepo{sessions: make(map[string]*Session), held: make(map[string]bool)}
}

func (r *stubRepo) Create(_ context.Context, session *Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := session.Date + "|" + session.Time
	if r.held[key] {
		return ErrSlotHeld
	}
	r.held[key] = true
	session.ID = "sess-1"
	session.CreatedAt = time.Now()
	r.sessions[session.ID] = session
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.held, s.Date+"|"+s.Time)
	delete(r.sessions, id)
	return nil
}

func (r *stubRepo) ListRange(_ context.Context, from, to string) ([]*Session, error) {
	var out []*Session
	for _, s := range r.sessions {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

func postSession(t *testing.T, handler *Handler, req CreateRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/admin/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, r)
	return w
}

func TestHandlerCreate(t *testing.T) {
	handler := NewHandler(newStubRepo(), nil)

	w := postSession(t, handler, CreateRequest{Date: "2026-03-02", Time: "13:00", Title: "Team training"})
	require.Equal(t, http.StatusCreated, w.Code)

	var session Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "sess-1", session.ID)
}

func TestHandlerCreateConflict(t *testing.T) {
	handler := NewHandler(newStubRepo(), nil)

	req := CreateRequest{Date: "2026-03-02", Time: "13:00"}
	require.Equal(t, http.StatusCreated, postSession(t, handler, req).Code)
	assert.Equal(t, http.StatusConflict, postSession(t, handler, req).Code)
}

func TestHandlerCreateValidation(t *testing.T) {
	handler := NewHandler(newStubRepo(), nil)

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"bad date", CreateRequest{Date: "someday", Time: "13:00"}},
		{"bad time", CreateRequest{Date: "2026-03-02", Time: "1pm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, postSession(t, handler, tt.req).Code)
		})
	}
}

func TestHandlerDelete(t *testing.T) {
	repo := newStubRepo()
	handler := NewHandler(repo, nil)
	require.Equal(t, http.StatusCreated, postSession(t, handler, CreateRequest{Date: "2026-03-02", Time: "13:00"}).Code)

	router := chi.NewRouter()
	router.Delete("/admin/sessions/{id}", handler.Delete)

	r := httptest.NewRequest(http.MethodDelete, "/admin/sessions/sess-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	r = httptest.NewRequest(http.MethodDelete, "/admin/sessions/sess-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerList(t *testing.T) {
	handler := NewHandler(newStubRepo(), nil)
	require.Equal(t, http.StatusCreated, postSession(t, handler, CreateRequest{Date: "2026-03-02", Time: "13:00"}).Code)

	r := httptest.NewRequest(http.MethodGet, "/admin/sessions?from=2026-03-01&to=2026-03-07", nil)
	w := httptest.NewRecorder()
	handler.List(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestHandlerListRequiresDates(t *testing.T) {
	handler := NewHandler(newStubRepo(), nil)

	r := httptest.NewRequest(http.MethodGet, "/admin/sessions?from=2026-03-01", nil)
	w := httptest.NewRecorder()
	handler.List(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
