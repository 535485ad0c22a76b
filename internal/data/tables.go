package data

// Table describes one content table: its writable columns, natural order and
// the columns used for search.
type Table struct {
	Name string
	// Columns lists the writable content columns, excluding id and timestamps.
	Columns []string
	// OrderBy is the natural ordering column; rows come back newest first.
	OrderBy string
	// TitleColumn and TextColumn are the title-like and description-like
	// columns matched by search.
	TitleColumn string
	TextColumn  string
}

// Flag columns toggled by bulk operations.
const (
	ColumnPublished  = "published"
	ColumnIsFeatured = "is_featured"
)

var (
	Courses = &Table{
		Name:        "courses",
		Columns:     []string{"title", "description", "level", "duration", "price", "is_featured", "image_url"},
		OrderBy:     "created_at",
		TitleColumn: "title",
		TextColumn:  "description",
	}
	VideoCourses = &Table{
		Name:        "video_courses",
		Columns:     []string{"title", "description", "level", "duration", "price", "video_url", "is_featured", "image_url"},
		OrderBy:     "created_at",
		TitleColumn: "title",
		TextColumn:  "description",
	}
	BlogPosts = &Table{
		Name:        "blog_posts",
		Columns:     []string{"title", "excerpt", "content", "slug", "published", "image_url"},
		OrderBy:     "created_at",
		TitleColumn: "title",
		TextColumn:  "excerpt",
	}
	Projects = &Table{
		Name:        "projects",
		Columns:     []string{"title", "description", "category", "status", "technologies", "github_url", "demo_url", "is_featured", "image_url"},
		OrderBy:     "created_at",
		TitleColumn: "title",
		TextColumn:  "description",
	}
	TalksEvents = &Table{
		Name:        "talks_events",
		Columns:     []string{"title", "description", "event_type", "event_name", "event_date", "location", "registration_url", "slides_url", "video_url", "is_featured", "image_url"},
		OrderBy:     "event_date",
		TitleColumn: "title",
		TextColumn:  "description",
	}
	Companies = &Table{
		Name:        "companies",
		Columns:     []string{"name", "description", "partnership_type", "website_url", "logo_url"},
		OrderBy:     "created_at",
		TitleColumn: "name",
		TextColumn:  "description",
	}
)

// Tables lists every content table.
var Tables = []*Table{Courses, VideoCourses, BlogPosts, Projects, TalksEvents, Companies}

// TableByName returns the table with the given name, or nil.
func TableByName(name string) *Table {
	for _, t := range Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// HasColumn reports whether col is a writable content column of t.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AllColumns returns every column of t, including id and timestamps.
func (t *Table) AllColumns() []string {
	cols := make([]string, 0, len(t.Columns)+3)
	cols = append(cols, "id")
	cols = append(cols, t.Columns...)
	return append(cols, "created_at", "updated_at")
}

// knows reports whether col may appear in a query against t.
func (t *Table) knows(col string) bool {
	switch col {
	case "id", "created_at", "updated_at":
		return true
	}
	return t.HasColumn(col)
}
