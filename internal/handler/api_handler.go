package handler

import (
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// APIHandler serves the JSON API.
type APIHandler struct {
	collections map[string]service.Collection
	bulk        *service.BulkService
	search      *service.SearchService
	stats       *service.StatsService
	log         logger.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(collections map[string]service.Collection, bulk *service.BulkService, search *service.SearchService, stats *service.StatsService, log logger.Logger) *APIHandler {
	return &APIHandler{
		collections: collections,
		bulk:        bulk,
		search:      search,
		stats:       stats,
		log:         log,
	}
}

func (h *APIHandler) collection(w http.ResponseWriter, r *http.Request) (service.Collection, bool) {
	c, ok := h.collections[chi.URLParam(r, "kind")]
	if !ok {
		middleware.WriteJSONError(w, http.StatusNotFound, "Not found")
	}
	return c, ok
}

// listHandler returns the public records of a kind.
func (h *APIHandler) listHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	records, err := c.List(r.Context(), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

func (h *APIHandler) getHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	rec, err := c.Get(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) createHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := c.Create(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("Created " + c.Kind().Label + " " + rec.Base().ID)
	middleware.WriteJSON(w, http.StatusCreated, rec)
}

func (h *APIHandler) updateHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := c.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rec)
}

func (h *APIHandler) deleteHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	if err := c.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) bulkHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := service.ParseBulkRequest(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.bulk.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

func (h *APIHandler) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.search.Search(r.Context(), q.Get("q"), q.Get("type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Rollup(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, stats)
}

// writeError maps a service error to its status and { "error": message } body.
// Data-access messages pass through unchanged.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := service.StatusCode(err)
	message := err.Error()
	switch status {
	case http.StatusNotFound:
		message = "Not found"
	case http.StatusInternalServerError:
		logger.FromContext(r.Context(), h.log).Error(err, "API request failed")
		var aggErr *service.AggregateError
		if errors.As(err, &aggErr) {
			message = aggErr.Message
		}
	}
	middleware.WriteJSONError(w, status, message)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &service.ValidationError{Message: "Request body too large"}
		}
		return nil, err
	}
	return body, nil
}
