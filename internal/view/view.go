package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
)

// View holds one template set per page. Each set is the page plus every
// layout and partial, so pages can override blocks independently.
type View struct {
	pages map[string]*template.Template
}

// New parses templates/pages/*.html from fsys against templates/layouts and
// templates/partials.
func New(fsys fs.FS) (*View, error) {
	var shared []string
	for _, dir := range []string{"layouts", "partials"} {
		files, err := fs.Glob(fsys, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, err
		}
		shared = append(shared, files...)
	}
	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page templates under templates/pages")
	}

	v := &View{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := path.Base(page)
		files := append(append(make([]string, 0, len(shared)+1), shared...), page)
		set, err := template.New(name).Funcs(Funcs()).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = set
	}
	return v, nil
}

func (v *View) lookup(name string) (*template.Template, error) {
	set, ok := v.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return set, nil
}

// Render executes page name through the "base" layout. Output is buffered so
// a failing template never leaves a half-written response.
func (v *View) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	set, err := v.lookup(name)
	if err != nil {
		return err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["IsBasicMode"] = IsBasicMode(r.Context())
	data["Path"] = r.URL.Path

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if rw, ok := w.(http.ResponseWriter); ok && rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderPartial executes only block of page name. HTMX swaps use it.
func (v *View) RenderPartial(w io.Writer, name, block string, data interface{}) error {
	set, err := v.lookup(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, block, data); err != nil {
		return fmt.Errorf("render %s#%s: %w", name, block, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
