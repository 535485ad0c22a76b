package handler

import (
	"eduplatform/internal/logger"
	"eduplatform/internal/service"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	collections map[string]service.Collection
	baseURL     string
	log         logger.Logger
}

// NewSeoHandler creates a new SeoHandler. baseURL is the public origin used
// for absolute links.
func NewSeoHandler(collections map[string]service.Collection, baseURL string, log logger.Logger) *SeoHandler {
	return &SeoHandler{collections: collections, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// robotsHandler serves robots.txt. The API and admin pages are kept out of
// the index.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /admin")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

var staticPages = []string{"/", "/about", "/courses", "/video-courses", "/blog", "/projects", "/talks-events", "/companies"}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler lists the static pages and every public detail page.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	sitemap := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPages {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + p})
	}

	for _, slug := range detailKinds {
		records, err := h.collections[slug].List(r.Context(), true)
		if err != nil {
			h.log.Error(err, "Failed to list "+slug+" for sitemap")
			http.Error(w, "Failed to retrieve content for sitemap", http.StatusInternalServerError)
			return
		}
		for _, rec := range records {
			meta := rec.Base()
			sitemap.URLs = append(sitemap.URLs, sitemapURL{
				Loc:     h.baseURL + publicPaths[slug] + "/" + meta.ID,
				LastMod: meta.UpdatedAt.Format(sitemapDateFormat),
			})
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		h.log.Error(err, "Failed to encode sitemap")
	}
}
