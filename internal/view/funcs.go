package view

import (
	"bytes"
	"eduplatform/internal/listview"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md        = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

// Markdown renders src to HTML and strips anything unsafe from the result.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date":     formatTime("Jan 2, 2006"),
		"datetime": formatTime("Jan 2, 2006 15:04"),
		"isodate":  formatTime("2006-01-02"),
		"markdown": Markdown,
		"price":    func(d decimal.Decimal) string { return listview.Price(d) },
		"truncate": func(n int, s string) string { return listview.Truncate(s, n) },
		"join":     strings.Join,
		"lower":    strings.ToLower,
		"dict":     dict,
	}
}

func formatTime(layout string) func(interface{}) string {
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		case *time.Time:
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(layout)
		}
		return ""
	}
}

// dict builds a map from alternating keys and values so a template can pass
// several values to a partial.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
