package handler

import (
	"eduplatform/internal/logger"
	"eduplatform/internal/middleware"
	"eduplatform/internal/session"
	"eduplatform/web"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Public *PublicHandler
	Admin  *AdminHandler
	API    *APIHandler
	Auth   *AuthHandler
	SEO    *SeoHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, authzMiddleware func(http.Handler) http.Handler, errorMiddleware func(middleware.AppHandler) http.Handler, sm session.Manager, corsOrigins []string, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SettingsMiddleware)
	r.Use(sm.LoadAndSave)

	// CORS runs ahead of authorization so preflight requests are answered
	// without a session.
	r.Route("/api", func(r chi.Router) {
		r.Use(apiCORS(corsOrigins))
		r.Use(authzMiddleware)

		r.Get("/search", h.API.searchHandler)
		r.Get("/stats", h.API.statsHandler)
		r.Post("/bulk", h.API.bulkHandler)

		r.Get("/{kind}", h.API.listHandler)
		r.Post("/{kind}", h.API.createHandler)
		r.Get("/{kind}/{id}", h.API.getHandler)
		r.Put("/{kind}/{id}", h.API.updateHandler)
		r.Delete("/{kind}/{id}", h.API.deleteHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
		r.Get("/robots.txt", h.SEO.robotsHandler)
		r.Get("/sitemap.xml", h.SEO.sitemapHandler)

		r.Get("/auth/login", h.Auth.handleLogin)
		r.Get("/auth/callback", h.Auth.handleCallback)
		r.Get("/auth/logout", h.Auth.handleLogout)
		r.Post("/auth/logout", h.Auth.handleLogout)

		r.Method(http.MethodGet, "/", errorMiddleware(h.Public.homeHandler))
		r.Method(http.MethodGet, "/about", errorMiddleware(h.Public.aboutHandler))
		for slug, path := range publicPaths {
			r.Method(http.MethodGet, path, errorMiddleware(h.Public.listHandler(slug)))
		}
		for _, slug := range detailKinds {
			r.Method(http.MethodGet, publicPaths[slug]+"/{id}", errorMiddleware(h.Public.detailHandler(slug)))
		}

		r.Route("/admin", func(r chi.Router) {
			r.Method(http.MethodGet, "/", errorMiddleware(h.Admin.dashboardHandler))
			r.Method(http.MethodGet, "/{kind}", errorMiddleware(h.Admin.listHandler))
			r.Method(http.MethodGet, "/{kind}/new", errorMiddleware(h.Admin.newHandler))
			r.Method(http.MethodGet, "/{kind}/{id}/edit", errorMiddleware(h.Admin.editHandler))
			r.Method(http.MethodPost, "/{kind}/save", errorMiddleware(h.Admin.saveHandler))
			r.Method(http.MethodPost, "/{kind}/{id}/delete", errorMiddleware(h.Admin.deleteHandler))
			r.Method(http.MethodDelete, "/{kind}/{id}/delete", errorMiddleware(h.Admin.deleteHandler))
		})
	})

	return r
}

func apiCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "HX-Request"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
