// Package editor holds the form model behind the admin create and edit pages.
package editor

import (
	"eduplatform/internal/service"
)

// Input types rendered by the edit template.
const (
	InputText     = "text"
	InputTextarea = "textarea"
	InputURL      = "url"
	InputNumber   = "number"
	InputSelect   = "select"
	InputCheckbox = "checkbox"
	InputDateTime = "datetime-local"
	// InputList is a comma separated list of labels.
	InputList = "list"
)

// Field describes one form input. Name is the JSON key of the record field.
type Field struct {
	Name     string
	Label    string
	Type     string
	Options  []string
	Required bool
	Default  string
	Hint     string
}

var levels = []string{"Beginner", "Intermediate", "Advanced"}

var courseFields = []Field{
	{Name: "title", Label: "Title", Type: InputText, Required: true},
	{Name: "description", Label: "Description", Type: InputTextarea, Required: true},
	{Name: "level", Label: "Level", Type: InputSelect, Options: levels, Default: "Beginner"},
	{Name: "duration", Label: "Duration", Type: InputText, Hint: "e.g. 6 weeks"},
	{Name: "price", Label: "Price", Type: InputNumber, Default: "0"},
	{Name: "image_url", Label: "Image URL", Type: InputURL},
	{Name: "is_featured", Label: "Featured", Type: InputCheckbox},
}

var videoCourseFields = []Field{
	{Name: "title", Label: "Title", Type: InputText, Required: true},
	{Name: "description", Label: "Description", Type: InputTextarea, Required: true},
	{Name: "level", Label: "Level", Type: InputSelect, Options: levels, Default: "Beginner"},
	{Name: "duration", Label: "Duration", Type: InputText, Hint: "e.g. 3h 20m"},
	{Name: "price", Label: "Price", Type: InputNumber, Default: "0"},
	{Name: "video_url", Label: "Video URL", Type: InputURL},
	{Name: "image_url", Label: "Image URL", Type: InputURL},
	{Name: "is_featured", Label: "Featured", Type: InputCheckbox},
}

var blogFields = []Field{
	{Name: "title", Label: "Title", Type: InputText, Required: true},
	{Name: "slug", Label: "URL Slug", Type: InputText, Hint: "Generated from the title when left empty"},
	{Name: "excerpt", Label: "Excerpt", Type: InputTextarea},
	{Name: "content", Label: "Content", Type: InputTextarea, Required: true, Hint: "Markdown"},
	{Name: "image_url", Label: "Image URL", Type: InputURL},
	{Name: "published", Label: "Published", Type: InputCheckbox},
}

var projectFields = []Field{
	{Name: "title", Label: "Title", Type: InputText, Required: true},
	{Name: "description", Label: "Description", Type: InputTextarea, Required: true},
	{Name: "category", Label: "Category", Type: InputText, Default: "Web Development"},
	{Name: "status", Label: "Status", Type: InputSelect, Default: "Planning",
		Options: []string{"Planning", "In Progress", "Completed", "On Hold"}},
	{Name: "technologies", Label: "Technologies", Type: InputList, Hint: "Comma separated, e.g. Go, HTMX"},
	{Name: "github_url", Label: "GitHub URL", Type: InputURL},
	{Name: "demo_url", Label: "Demo URL", Type: InputURL},
	{Name: "image_url", Label: "Image URL", Type: InputURL},
	{Name: "is_featured", Label: "Featured", Type: InputCheckbox},
}

var talkFields = []Field{
	{Name: "title", Label: "Title", Type: InputText, Required: true},
	{Name: "description", Label: "Description", Type: InputTextarea, Required: true},
	{Name: "event_type", Label: "Type", Type: InputSelect, Default: "talk",
		Options: []string{"talk", "panel", "podcast", "interview", "commentary", "mention", "keynote", "workshop", "conference"}},
	{Name: "event_name", Label: "Event Name", Type: InputText},
	{Name: "event_date", Label: "Date", Type: InputDateTime, Required: true},
	{Name: "location", Label: "Location", Type: InputText, Required: true},
	{Name: "registration_url", Label: "Registration URL", Type: InputURL},
	{Name: "slides_url", Label: "Slides URL", Type: InputURL},
	{Name: "video_url", Label: "Video URL", Type: InputURL},
	{Name: "image_url", Label: "Image URL", Type: InputURL},
	{Name: "is_featured", Label: "Featured", Type: InputCheckbox},
}

var companyFields = []Field{
	{Name: "name", Label: "Name", Type: InputText, Required: true},
	{Name: "description", Label: "Description", Type: InputTextarea, Required: true},
	{Name: "partnership_type", Label: "Partnership Type", Type: InputSelect, Default: "company",
		Options: []string{"university", "training", "company", "charity"}},
	{Name: "website_url", Label: "Website URL", Type: InputURL},
	{Name: "logo_url", Label: "Logo URL", Type: InputURL},
}

// Fields returns the form fields for kind in display order.
func Fields(kind service.Kind) []Field {
	switch kind.Slug {
	case service.KindCourses.Slug:
		return courseFields
	case service.KindVideoCourses.Slug:
		return videoCourseFields
	case service.KindBlog.Slug:
		return blogFields
	case service.KindProjects.Slug:
		return projectFields
	case service.KindTalks.Slug:
		return talkFields
	case service.KindCompanies.Slug:
		return companyFields
	}
	return nil
}
