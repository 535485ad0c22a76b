//go:build integration

package handler

import (
	"context"
	"eduplatform/internal/auth"
	"eduplatform/internal/data"
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/service"
	"eduplatform/internal/session"
	"eduplatform/internal/view"
	"eduplatform/web"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// signedIn reports a fixed subject for every request on top of a real
// session manager.
type signedIn struct {
	*scs.SessionManager
	subject string
}

func (s *signedIn) GetString(ctx context.Context, key string) string {
	if key == session.KeySubject {
		return s.subject
	}
	return s.SessionManager.GetString(ctx, key)
}

type testApp struct {
	db     *sqlx.DB
	public http.Handler
	admin  http.Handler
}

// setupTest initializes a full application stack over an in-memory database.
func setupTest(t *testing.T) (*testApp, func()) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(1)

	for _, f := range []string{"0001_content_schema.up.sql", "0002_sessions.up.sql"} {
		schema, err := os.ReadFile("../../migrations/sqlite/" + f)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f, err)
		}
		db.MustExec(string(schema))
	}

	log := logger.Nop()
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	enforcer, err := auth.NewMemoryEnforcer("../../auth_model.conf")
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	auth.SeedDefaultPolicies(enforcer, log)

	gateway := data.NewGateway(db)
	collections := service.NewCollections(gateway)
	stats := service.NewStatsService(gateway)

	build := func(sm session.Manager) http.Handler {
		h := Handlers{
			Public: NewPublicHandler(collections, viewService, log),
			Admin:  NewAdminHandler(collections, stats, viewService, sm, log),
			API: NewAPIHandler(collections, service.NewBulkService(gateway),
				service.NewSearchService(gateway), stats, log),
			Auth: NewAuthHandler(nil, sm, log),
			SEO:  NewSeoHandler(collections, "http://localhost:8080", log),
		}
		authz := middleware.Authorizer(enforcer, sm, nil, log)
		return NewRouter(h, authz, middleware.Error(log, viewService), sm, nil, log)
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db.DB)
	sessionManager.Lifetime = 3 * time.Minute

	app := &testApp{
		db:     db,
		public: build(sessionManager),
		admin:  build(&signedIn{SessionManager: sessionManager, subject: "admin-1"}),
	}
	teardown := func() {
		db.Close()
	}
	return app, teardown
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createdID(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusCreated {
		t.Fatalf("want status 201; got %d: %s", rr.Code, rr.Body.String())
	}
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil || rec.ID == "" {
		t.Fatalf("expected an id in %s", rr.Body.String())
	}
	return rec.ID
}

func TestIntegration_WriteRequiresSession(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	body := `{"title":"AI4ALL","description":"intro","price":0}`
	rr := do(app.public, "POST", "/api/courses", body)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want status 401; got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"Unauthorized"}` {
		t.Errorf("unexpected body %s", rr.Body.String())
	}

	createdID(t, do(app.admin, "POST", "/api/courses", body))

	rr = do(app.public, "GET", "/api/courses", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "AI4ALL") {
		t.Errorf("expected the public list to include the course; got %d %s", rr.Code, rr.Body.String())
	}
}

func TestIntegration_BlogPublishFlow(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	id := createdID(t, do(app.admin, "POST", "/api/blog", `{"title":"Draft X","content":"...","published":false}`))

	if rr := do(app.public, "GET", "/api/blog", ""); strings.Contains(rr.Body.String(), "Draft X") {
		t.Fatal("expected the draft to be absent from the public list")
	}
	if rr := do(app.public, "GET", "/blog/"+id, ""); rr.Code != http.StatusNotFound {
		t.Errorf("want 404 for the draft page; got %d", rr.Code)
	}
	if rr := do(app.admin, "GET", "/admin/blog", ""); !strings.Contains(rr.Body.String(), "Draft X") {
		t.Error("expected the draft in the admin list")
	}

	rr := do(app.admin, "POST", "/api/bulk", `{"operation":"publish","table":"blog_posts","ids":["`+id+`"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status 200; got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := do(app.public, "GET", "/api/blog", ""); !strings.Contains(rr.Body.String(), "Draft X") {
		t.Error("expected the published post in the public list")
	}
	if rr := do(app.public, "GET", "/blog/"+id, ""); rr.Code != http.StatusOK {
		t.Errorf("want 200 for the published page; got %d", rr.Code)
	}
}

func TestIntegration_SearchHidesDrafts(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	id := createdID(t, do(app.admin, "POST", "/api/blog", `{"title":"Secret Draft AI","content":"...","published":false}`))

	for _, path := range []string{"/api/search?q=Secret&type=all", "/api/search?q=Secret&type=blog"} {
		rr := do(app.public, "GET", path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("want status 200; got %d: %s", rr.Code, rr.Body.String())
		}
		if strings.Contains(rr.Body.String(), "Secret Draft AI") {
			t.Errorf("%s returned the draft: %s", path, rr.Body.String())
		}
	}

	rr := do(app.admin, "POST", "/api/bulk", `{"operation":"publish","table":"blog_posts","ids":["`+id+`"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status 200; got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := do(app.public, "GET", "/api/search?q=Secret", ""); !strings.Contains(rr.Body.String(), "Secret Draft AI") {
		t.Errorf("expected the published post in search results; got %s", rr.Body.String())
	}
}

func TestIntegration_BulkFeature(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	p1 := createdID(t, do(app.admin, "POST", "/api/projects", `{"title":"One","description":"d"}`))
	p2 := createdID(t, do(app.admin, "POST", "/api/projects", `{"title":"Two","description":"d"}`))

	rr := do(app.public, "POST", "/api/bulk", `{"operation":"feature","table":"projects","ids":["`+p1+`","`+p2+`"]}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want status 401 without a session; got %d", rr.Code)
	}

	rr = do(app.admin, "POST", "/api/bulk", `{"operation":"feature","table":"projects","ids":["`+p1+`","`+p2+`"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status 200; got %d: %s", rr.Code, rr.Body.String())
	}
	var result service.BulkResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.AffectedRows != 2 || result.Operation != "feature" || result.Table != "projects" {
		t.Errorf("unexpected result %+v", result)
	}

	var projects []data.Project
	rr = do(app.public, "GET", "/api/projects", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &projects); err != nil {
		t.Fatal(err)
	}
	for _, p := range projects {
		if !p.IsFeatured {
			t.Errorf("expected %s to be featured", p.ID)
		}
	}
}

func TestIntegration_SearchAndStats(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	createdID(t, do(app.admin, "POST", "/api/projects", `{"title":"Robot","description":"AI assistant"}`))
	createdID(t, do(app.admin, "POST", "/api/courses", `{"title":"AI4ALL","description":"intro","price":49.5}`))
	createdID(t, do(app.admin, "POST", "/api/video-courses", `{"title":"Go","description":"video","price":20}`))

	rr := do(app.public, "GET", "/api/search?q=AI&type=all", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("want status 200; got %d: %s", rr.Code, rr.Body.String())
	}
	var resp service.SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("want 2 results; got %+v", resp.Results)
	}
	if resp.Results[0].Type != "course" || resp.Results[1].Type != "project" {
		t.Errorf("expected the title match first; got %+v", resp.Results)
	}

	rr = do(app.public, "GET", "/api/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("want status 200; got %d", rr.Code)
	}
	var stats struct {
		Overview struct {
			TotalContent int     `json:"totalContent"`
			TotalRevenue float64 `json:"totalRevenue"`
		} `json:"overview"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Overview.TotalContent != 3 || stats.Overview.TotalRevenue != 69.5 {
		t.Errorf("unexpected overview %+v", stats.Overview)
	}
}

func TestIntegration_Pages(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	createdID(t, do(app.admin, "POST", "/api/courses", `{"title":"AI4ALL","description":"intro","price":0,"is_featured":true}`))
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	createdID(t, do(app.admin, "POST", "/api/talks",
		`{"title":"Keynote","description":"d","event_date":"`+future+`","location":"London"}`))

	testCases := []struct {
		name       string
		handler    http.Handler
		path       string
		wantStatus int
		wantBody   string
	}{
		{"home", app.public, "/", http.StatusOK, "AI4ALL"},
		{"home upcoming talk", app.public, "/", http.StatusOK, "Keynote"},
		{"courses", app.public, "/courses", http.StatusOK, "AI4ALL"},
		{"talks", app.public, "/talks-events", http.StatusOK, "Keynote"},
		{"basic mode", app.public, "/about?basic=true", http.StatusOK, "Full version"},
		{"missing detail", app.public, "/projects/nope", http.StatusNotFound, "Error 404"},
		{"admin anonymous", app.public, "/admin", http.StatusFound, ""},
		{"dashboard", app.admin, "/admin", http.StatusOK, "Dashboard"},
		{"admin list", app.admin, "/admin/courses", http.StatusOK, "AI4ALL"},
		{"admin new", app.admin, "/admin/talks/new", http.StatusOK, "New Talk"},
		{"sitemap", app.public, "/sitemap.xml", http.StatusOK, "http://localhost:8080/talks-events/"},
		{"static", app.public, "/static/css/site.css", http.StatusOK, ".card"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(tc.handler, "GET", tc.path, "")
			if rr.Code != tc.wantStatus {
				t.Errorf("want status %d; got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantBody != "" && !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Errorf("body does not contain expected string '%s'", tc.wantBody)
			}
		})
	}
}
