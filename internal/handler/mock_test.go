//go:build unit

package handler

import (
	"context"
	"eduplatform/internal/data"
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/service"
	"eduplatform/internal/session"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// mockCollection is an in-memory Collection.
type mockCollection struct {
	kind    service.Kind
	records []data.Entity
	// err, when set, is returned by every call.
	err       error
	deleteErr error
	created   int
}

var _ service.Collection = (*mockCollection)(nil)

func newMockCollection(kind service.Kind, records ...data.Entity) *mockCollection {
	return &mockCollection{kind: kind, records: records}
}

func (m *mockCollection) Kind() service.Kind { return m.kind }

func (m *mockCollection) List(ctx context.Context, public bool) ([]data.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]data.Entity, 0, len(m.records))
	for _, rec := range m.records {
		if public && !isPublic(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockCollection) Get(ctx context.Context, id string, public bool) (data.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, rec := range m.records {
		if rec.Base().ID == id && (!public || isPublic(rec)) {
			return rec, nil
		}
	}
	return nil, service.ErrNotFound
}

func (m *mockCollection) Create(ctx context.Context, body []byte) (data.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec := m.kind.New()
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, &service.ValidationError{Message: "Invalid payload"}
	}
	m.created++
	rec.Base().ID = fmt.Sprintf("new-%d", m.created)
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *mockCollection) Update(ctx context.Context, id string, body []byte) (data.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, err := m.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, &service.ValidationError{Message: "Invalid payload"}
	}
	rec.Base().ID = id
	return rec, nil
}

func (m *mockCollection) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.Base().ID != id {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

func isPublic(rec data.Entity) bool {
	if post, ok := rec.(*data.BlogPost); ok {
		return post.Published
	}
	return true
}

// stubView records what was rendered instead of executing templates.
type stubView struct {
	mu    sync.Mutex
	name  string
	block string
	data  map[string]interface{}
}

var _ PageRenderer = (*stubView)(nil)

func (v *stubView) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name, v.block, v.data = name, "", data
	_, err := io.WriteString(w, "page:"+name)
	return err
}

func (v *stubView) RenderPartial(w io.Writer, name, block string, data interface{}) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name, v.block = name, block
	v.data, _ = data.(map[string]interface{})
	_, err := io.WriteString(w, "partial:"+block)
	return err
}

// mockSessionManager is a mock implementation of the session.Manager interface.
type mockSessionManager struct {
	mu            sync.Mutex
	values        map[string]string
	destroyCalled bool
	renewCalled   bool
}

var _ session.Manager = (*mockSessionManager)(nil)

func newMockSession(values map[string]string) *mockSessionManager {
	if values == nil {
		values = make(map[string]string)
	}
	return &mockSessionManager{values: values}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }

func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(val)
}

func (m *mockSessionManager) GetString(ctx context.Context, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.values[key]
	delete(m.values, key)
	return v
}

func (m *mockSessionManager) Remove(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *mockSessionManager) RenewToken(ctx context.Context) error {
	m.renewCalled = true
	return nil
}

func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	return nil
}

// testServer wires the handlers to a router whose authorizer lets every
// request through as an admin.
type testServer struct {
	router      *chi.Mux
	collections map[string]*mockCollection
	view        *stubView
	session     *mockSessionManager
}

func newTestServer(t *testing.T, seed ...data.Entity) *testServer {
	t.Helper()
	mocks := make(map[string]*mockCollection)
	collections := make(map[string]service.Collection)
	for _, kind := range service.Kinds {
		m := newMockCollection(kind)
		mocks[kind.Slug] = m
		collections[kind.Slug] = m
	}
	for _, rec := range seed {
		for _, kind := range service.Kinds {
			if fmt.Sprintf("%T", kind.New()) == fmt.Sprintf("%T", rec) {
				mocks[kind.Slug].records = append(mocks[kind.Slug].records, rec)
			}
		}
	}

	v := &stubView{}
	sm := newMockSession(nil)
	log := logger.Nop()
	h := Handlers{
		Public: NewPublicHandler(collections, v, log),
		Admin:  NewAdminHandler(collections, nil, v, sm, log),
		API:    NewAPIHandler(collections, nil, service.NewSearchService(nil), nil, log),
		Auth:   NewAuthHandler(nil, sm, log),
		SEO:    NewSeoHandler(collections, "https://edu.example.com/", log),
	}
	allowAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ui := &middleware.UserInfo{Subject: "admin-1", Name: "Admin", Role: "admin"}
			next.ServeHTTP(w, r.WithContext(middleware.SetUserInfo(r.Context(), ui)))
		})
	}
	router := NewRouter(h, allowAll, middleware.Error(log, v), sm, nil, log)
	return &testServer{router: router, collections: mocks, view: v, session: sm}
}
