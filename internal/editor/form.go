package editor

import (
	"bytes"
	"eduplatform/internal/data"
	"eduplatform/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the value format of a datetime-local input.
const dateLayout = "2006-01-02T15:04"

// Form is the state of one editor page. It is seeded empty (create mode) or
// from a stored record (edit mode).
type Form struct {
	Kind   service.Kind
	Fields []Field
	// ID is empty in create mode.
	ID     string
	Values map[string]string
	Errors map[string]string
	// Message is a form-level error, such as a rejected save.
	Message string
}

// New creates a form for kind. A nil rec puts the form in create mode with
// the field defaults filled in.
func New(kind service.Kind, rec data.Entity) (*Form, error) {
	f := &Form{
		Kind:   kind,
		Fields: Fields(kind),
		Values: make(map[string]string),
		Errors: make(map[string]string),
	}
	if rec == nil {
		for _, fld := range f.Fields {
			f.Values[fld.Name] = fld.Default
		}
		return f, nil
	}

	f.ID = rec.Base().ID
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var stored map[string]interface{}
	if err := dec.Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	for _, fld := range f.Fields {
		f.Values[fld.Name] = format(fld, stored[fld.Name])
	}
	return f, nil
}

// IsEdit reports whether saving the form updates an existing record.
func (f *Form) IsEdit() bool { return f.ID != "" }

// Title is the page heading.
func (f *Form) Title() string {
	if f.IsEdit() {
		return "Edit " + f.Kind.Label
	}
	return "New " + f.Kind.Label
}

// Bind replaces the form values with the submitted ones. Fields missing from
// the submission keep their value, except checkboxes, which are cleared.
func (f *Form) Bind(form url.Values) {
	if id := form.Get("id"); id != "" {
		f.ID = id
	}
	for _, fld := range f.Fields {
		if _, ok := form[fld.Name]; !ok && fld.Type != InputCheckbox {
			continue
		}
		v := strings.TrimSpace(form.Get(fld.Name))
		switch fld.Type {
		case InputCheckbox:
			if v == "on" || v == "true" {
				v = "true"
			} else {
				v = ""
			}
		case InputList:
			v = strings.Join(SplitList(v), ", ")
		case InputTextarea:
			v = strings.TrimRight(form.Get(fld.Name), " \t\r\n")
		}
		f.Values[fld.Name] = v
	}
	if f.Kind.Slug == service.KindBlog.Slug && f.Values["slug"] == "" {
		f.Values["slug"] = Slugify(f.Values["title"])
	}
}

// Validate checks required fields and value formats before anything is
// sent to the write path. It reports whether the form is valid.
func (f *Form) Validate() bool {
	f.Errors = make(map[string]string)
	for _, fld := range f.Fields {
		v := strings.TrimSpace(f.Values[fld.Name])
		if fld.Required && v == "" {
			f.Errors[fld.Name] = fld.Label + " is required"
			continue
		}
		if v == "" {
			continue
		}
		switch fld.Type {
		case InputNumber:
			if d, err := decimal.NewFromString(v); err != nil {
				f.Errors[fld.Name] = fld.Label + " must be a number"
			} else if d.IsNegative() {
				f.Errors[fld.Name] = fld.Label + " cannot be negative"
			}
		case InputDateTime:
			if _, err := parseDate(v); err != nil {
				f.Errors[fld.Name] = fld.Label + " must be a date"
			}
		}
	}
	if len(f.Errors) > 0 {
		f.Message = "Please fill in the required fields"
		return false
	}
	return true
}

// Payload encodes the form values as the JSON body of a create or update.
func (f *Form) Payload() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Fields))
	for _, fld := range f.Fields {
		v := strings.TrimSpace(f.Values[fld.Name])
		switch fld.Type {
		case InputCheckbox:
			out[fld.Name] = v == "true"
		case InputNumber:
			d := decimal.Zero
			if v != "" {
				var err error
				if d, err = decimal.NewFromString(v); err != nil {
					return nil, fmt.Errorf("%s: %w", fld.Name, err)
				}
			}
			out[fld.Name] = d
		case InputList:
			out[fld.Name] = SplitList(v)
		case InputDateTime:
			if v == "" {
				out[fld.Name] = nil
				continue
			}
			t, err := parseDate(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fld.Name, err)
			}
			out[fld.Name] = t
		case InputTextarea:
			out[fld.Name] = f.Values[fld.Name]
		default:
			out[fld.Name] = v
		}
	}
	return json.Marshal(out)
}

// Reject records a failed save, keeping the submitted values for retry.
func (f *Form) Reject(err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		f.Message = vErr.Message
		for _, fe := range vErr.Fields {
			f.Errors[fe.Field] = fe.Reason
		}
		return
	}
	f.Message = err.Error()
}

// SplitList splits a comma or newline separated list, trimming entries and
// dropping blanks and duplicates.
func SplitList(s string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func format(fld Field, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return ""
	case json.Number:
		return val.String()
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case string:
		if fld.Type == InputDateTime {
			if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
				return t.UTC().Format(dateLayout)
			}
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}
