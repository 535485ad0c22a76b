package handler

import (
	"eduplatform/internal/data"
	"eduplatform/internal/listview"
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/service"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// publicPaths maps a kind slug to its public list page.
var publicPaths = map[string]string{
	service.KindCourses.Slug:      "/courses",
	service.KindVideoCourses.Slug: "/video-courses",
	service.KindBlog.Slug:         "/blog",
	service.KindProjects.Slug:     "/projects",
	service.KindTalks.Slug:        "/talks-events",
	service.KindCompanies.Slug:    "/companies",
}

// detailKinds are the kinds with a public detail page.
var detailKinds = []string{
	service.KindVideoCourses.Slug,
	service.KindBlog.Slug,
	service.KindProjects.Slug,
	service.KindTalks.Slug,
}

const homeSectionSize = 3

// PublicHandler serves the public site.
type PublicHandler struct {
	collections map[string]service.Collection
	view        middleware.Renderer
	log         logger.Logger
	now         func() time.Time
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(collections map[string]service.Collection, v middleware.Renderer, log logger.Logger) *PublicHandler {
	return &PublicHandler{collections: collections, view: v, log: log, now: time.Now}
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) *middleware.AppError {
	data["UserInfo"] = middleware.GetUserInfo(r.Context())
	if err := h.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

func (h *PublicHandler) rows(r *http.Request, slug string) ([]listview.Row, error) {
	records, err := h.collections[slug].List(r.Context(), true)
	if err != nil {
		return nil, err
	}
	now := h.now()
	rows := make([]listview.Row, len(records))
	for i, rec := range records {
		rows[i] = listview.Describe(rec, now)
	}
	return rows, nil
}

// homeHandler shows featured courses and projects, the latest posts and the
// next upcoming talks.
func (h *PublicHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	sections := make(map[string][]listview.Row)
	for _, slug := range []string{service.KindCourses.Slug, service.KindBlog.Slug, service.KindProjects.Slug, service.KindTalks.Slug} {
		rows, err := h.rows(r, slug)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to load content", Code: http.StatusInternalServerError}
		}
		sections[slug] = rows
	}

	upcoming, _ := splitTalks(sections[service.KindTalks.Slug])
	return h.render(w, r, "home.html", map[string]interface{}{
		"Title":            "Home",
		"FeaturedCourses":  first(featured(sections[service.KindCourses.Slug]), homeSectionSize),
		"LatestPosts":      first(sections[service.KindBlog.Slug], homeSectionSize),
		"FeaturedProjects": first(featured(sections[service.KindProjects.Slug]), homeSectionSize),
		"UpcomingTalks":    first(upcoming, homeSectionSize),
	})
}

func (h *PublicHandler) aboutHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.render(w, r, "about.html", map[string]interface{}{"Title": "About"})
}

// listHandler returns the public card grid of one kind.
func (h *PublicHandler) listHandler(slug string) middleware.AppHandler {
	kind, _ := service.KindBySlug(slug)
	return func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
		rows, err := h.rows(r, slug)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to load " + kind.Plural, Code: http.StatusInternalServerError}
		}
		data := map[string]interface{}{
			"Title":      kind.Plural,
			"Kind":       kind,
			"Rows":       rows,
			"BasePath":   publicPaths[slug],
			"HasDetails": hasDetail(slug),
		}
		if slug == service.KindTalks.Slug {
			data["Upcoming"], data["Past"] = splitTalks(rows)
			return h.render(w, r, "talks.html", data)
		}
		return h.render(w, r, "collection.html", data)
	}
}

// detailHandler renders one public record. Missing and unpublished records
// are a 404, never an empty page.
func (h *PublicHandler) detailHandler(slug string) middleware.AppHandler {
	kind, _ := service.KindBySlug(slug)
	return func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
		rec, err := h.collections[slug].Get(r.Context(), chi.URLParam(r, "id"), true)
		if errors.Is(err, service.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: kind.Label + " not found", Code: http.StatusNotFound}
		}
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to load " + kind.Label, Code: http.StatusInternalServerError}
		}
		row := listview.Describe(rec, h.now())
		page := map[string]interface{}{
			"Title":    row.Title,
			"Kind":     kind,
			"Row":      row,
			"Record":   rec,
			"BasePath": publicPaths[slug],
		}
		if post, ok := rec.(*data.BlogPost); ok {
			page["Body"] = post.Content
		}
		return h.render(w, r, "detail.html", page)
	}
}

func hasDetail(slug string) bool {
	for _, s := range detailKinds {
		if s == slug {
			return true
		}
	}
	return false
}

// splitTalks partitions talk rows into upcoming, soonest first, and past,
// most recent first.
func splitTalks(rows []listview.Row) (upcoming, past []listview.Row) {
	for _, r := range rows {
		if r.Upcoming {
			upcoming = append(upcoming, r)
		} else {
			past = append(past, r)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(*upcoming[j].Date) })
	return upcoming, past
}

func featured(rows []listview.Row) []listview.Row {
	var out []listview.Row
	for _, r := range rows {
		if r.Featured {
			out = append(out, r)
		}
	}
	return out
}

func first(rows []listview.Row, n int) []listview.Row {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
