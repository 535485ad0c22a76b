package handler

import (
	"eduplatform/internal/editor"
	"eduplatform/internal/listview"
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/service"
	"eduplatform/internal/session"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// PageRenderer renders full pages and the HTMX fragments inside them.
type PageRenderer interface {
	middleware.Renderer
	RenderPartial(w io.Writer, name, block string, data interface{}) error
}

// AdminHandler serves the admin dashboard, list pages and editors.
type AdminHandler struct {
	collections map[string]service.Collection
	stats       *service.StatsService
	view        PageRenderer
	session     session.Manager
	log         logger.Logger
	now         func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(collections map[string]service.Collection, stats *service.StatsService, v PageRenderer, sm session.Manager, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		collections: collections,
		stats:       stats,
		view:        v,
		session:     sm,
		log:         log,
		now:         time.Now,
	}
}

func adminPath(kind service.Kind) string {
	return "/admin/" + kind.Slug
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h *AdminHandler) collection(r *http.Request) (service.Collection, *middleware.AppError) {
	c, ok := h.collections[chi.URLParam(r, "kind")]
	if !ok {
		return nil, &middleware.AppError{Error: errors.New("unknown kind"), Message: "Page not found", Code: http.StatusNotFound}
	}
	return c, nil
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) *middleware.AppError {
	data["UserInfo"] = middleware.GetUserInfo(r.Context())
	data["Kinds"] = service.Kinds
	if err := h.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

// dashboardHandler shows the stats rollup.
func (h *AdminHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	stats, err := h.stats.Rollup(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusInternalServerError}
	}
	return h.render(w, r, "admin_dashboard.html", map[string]interface{}{
		"Title": "Dashboard",
		"Stats": stats,
		"Flash": h.session.PopString(r.Context(), session.KeyFlash),
	})
}

// listHandler shows every record of a kind, drafts included, narrowed by the
// q and filter query parameters. An HTMX request targeting the rows only gets
// the rows back.
func (h *AdminHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	c, appErr := h.collection(r)
	if appErr != nil {
		return appErr
	}
	items, err := c.List(r.Context(), false)
	if err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusInternalServerError}
	}
	q := r.URL.Query()
	state := listview.New(c.Kind(), items, q.Get("q"), q.Get("filter"), h.now())
	return h.renderList(w, r, state)
}

func (h *AdminHandler) renderList(w http.ResponseWriter, r *http.Request, state listview.State) *middleware.AppError {
	data := map[string]interface{}{
		"Title":    state.Kind.Plural,
		"Kind":     state.Kind,
		"State":    state,
		"Rows":     state.Visible(),
		"Counts":   state.Counts(),
		"BasePath": adminPath(state.Kind),
		"Flash":    h.session.PopString(r.Context(), session.KeyFlash),
	}
	if isHTMX(r) && r.Header.Get("HX-Target") == "rows" {
		if err := h.view.RenderPartial(w, "admin_list.html", "rows", data); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render rows", Code: http.StatusInternalServerError}
		}
		return nil
	}
	return h.render(w, r, "admin_list.html", data)
}

// newHandler shows an empty editor.
func (h *AdminHandler) newHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	c, appErr := h.collection(r)
	if appErr != nil {
		return appErr
	}
	form, err := editor.New(c.Kind(), nil)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to prepare form", Code: http.StatusInternalServerError}
	}
	return h.renderForm(w, r, form)
}

// editHandler shows the editor seeded from the stored record.
func (h *AdminHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	c, appErr := h.collection(r)
	if appErr != nil {
		return appErr
	}
	rec, err := c.Get(r.Context(), chi.URLParam(r, "id"), false)
	if errors.Is(err, service.ErrNotFound) {
		return &middleware.AppError{Error: err, Message: c.Kind().Label + " not found", Code: http.StatusNotFound}
	}
	if err != nil {
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusInternalServerError}
	}
	form, err := editor.New(c.Kind(), rec)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to prepare form", Code: http.StatusInternalServerError}
	}
	return h.renderForm(w, r, form)
}

func (h *AdminHandler) renderForm(w http.ResponseWriter, r *http.Request, form *editor.Form) *middleware.AppError {
	return h.render(w, r, "admin_edit.html", map[string]interface{}{
		"Title":    form.Title(),
		"Kind":     form.Kind,
		"Form":     form,
		"BasePath": adminPath(form.Kind),
	})
}

// saveHandler creates or updates a record from the submitted editor. A form
// that fails validation, locally or in the service, is shown again with the
// submitted values.
func (h *AdminHandler) saveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	c, appErr := h.collection(r)
	if appErr != nil {
		return appErr
	}
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}

	kind := c.Kind()
	form, err := editor.New(kind, nil)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to prepare form", Code: http.StatusInternalServerError}
	}
	form.Bind(r.PostForm)
	if !form.Validate() {
		return h.renderForm(w, r, form)
	}

	payload, err := form.Payload()
	if err != nil {
		form.Reject(err)
		return h.renderForm(w, r, form)
	}
	if form.IsEdit() {
		_, err = c.Update(r.Context(), form.ID, payload)
	} else {
		_, err = c.Create(r.Context(), payload)
	}
	if err != nil {
		if service.StatusCode(err) >= http.StatusInternalServerError {
			logger.FromContext(r.Context(), h.log).Error(err, "Failed to save "+kind.Label)
		}
		form.Reject(err)
		return h.renderForm(w, r, form)
	}

	h.session.Put(r.Context(), session.KeyFlash, kind.Label+" saved")
	h.redirect(w, r, adminPath(kind))
	return nil
}

// deleteHandler removes one record. HTMX callers get an empty 200 on success
// so the page drops just that row, or the error in the flash area. Other
// callers are sent back to a freshly loaded list.
func (h *AdminHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	c, appErr := h.collection(r)
	if appErr != nil {
		return appErr
	}
	kind := c.Kind()
	id := chi.URLParam(r, "id")

	err := c.Delete(r.Context(), id)
	if err == nil {
		h.log.Info("Deleted " + kind.Label + " " + id)
		if isHTMX(r) {
			w.WriteHeader(http.StatusOK)
			return nil
		}
		h.session.Put(r.Context(), session.KeyFlash, kind.Label+" deleted")
		http.Redirect(w, r, adminPath(kind), http.StatusSeeOther)
		return nil
	}

	logger.FromContext(r.Context(), h.log).Error(err, "Failed to delete "+kind.Label+" "+id)
	message := "Failed to delete " + kind.Label + ": " + err.Error()
	if isHTMX(r) {
		w.Header().Set("HX-Retarget", "#flash")
		w.Header().Set("HX-Reswap", "innerHTML")
		if err := h.view.RenderPartial(w, "admin_list.html", "flash", map[string]interface{}{"Error": message}); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render error", Code: http.StatusInternalServerError}
		}
		return nil
	}

	items, listErr := c.List(r.Context(), false)
	if listErr != nil {
		return &middleware.AppError{Error: listErr, Message: listErr.Error(), Code: http.StatusInternalServerError}
	}
	state := listview.New(kind, items, "", "", h.now()).Apply(listview.DeleteFailed{ID: id, Message: message})
	return h.renderList(w, r, state)
}

// redirect sends the browser to path, through HX-Redirect for HTMX requests.
func (h *AdminHandler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
