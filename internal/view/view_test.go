//go:build unit

package view

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/layouts/base.html":   {Data: []byte(`{{define "base"}}<main>{{template "content" .}}</main>{{template "footer" .}}{{end}}`)},
		"templates/partials/footer.html": {Data: []byte(`{{define "footer"}}<footer>{{.Path}} basic={{.IsBasicMode}}</footer>{{end}}`)},
		"templates/pages/list.html": {Data: []byte(`{{define "content"}}<ul>{{template "rows" .}}</ul>{{end}}` +
			`{{define "rows"}}{{range .Rows}}<li>{{.}}</li>{{end}}{{end}}`)},
		"templates/pages/broken.html": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
}

func TestRender(t *testing.T) {
	v, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/courses", nil)
	req = req.WithContext(WithBasicMode(req.Context(), true))
	rr := httptest.NewRecorder()
	if err := v.Render(rr, req, "list.html", map[string]interface{}{"Rows": []string{"a", "b"}}); err != nil {
		t.Fatal(err)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "<ul><li>a</li><li>b</li></ul>") {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.Contains(body, "/courses basic=true") {
		t.Errorf("expected the footer to see path and basic mode; got %q", body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestRender_Errors(t *testing.T) {
	v, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("GET", "/", nil)

	if err := v.Render(httptest.NewRecorder(), req, "nope.html", nil); err == nil {
		t.Error("expected an error for an unknown page")
	}

	rr := httptest.NewRecorder()
	if err := v.Render(rr, req, "broken.html", map[string]interface{}{"Missing": 1}); err == nil {
		t.Error("expected an execution error")
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected nothing written on failure; got %q", rr.Body.String())
	}
}

func TestRenderPartial(t *testing.T) {
	v, err := New(testFS())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := v.RenderPartial(&buf, "list.html", "rows", map[string]interface{}{"Rows": []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<li>x</li>" {
		t.Errorf("unexpected fragment %q", buf.String())
	}
}

func TestNew_NoPages(t *testing.T) {
	if _, err := New(fstest.MapFS{}); err == nil {
		t.Error("expected an error without page templates")
	}
}
