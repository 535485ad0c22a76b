package service

import "eduplatform/internal/data"

// Kind describes one content type as exposed over HTTP.
type Kind struct {
	// Slug is the URL segment under /api and /admin.
	Slug   string
	Label  string
	Plural string
	Table  *data.Table
	// PublicFilter narrows public reads; empty means every row is public.
	PublicFilter []data.Eq
	// New returns an empty record of this kind.
	New func() data.Entity
}

var (
	KindCourses = Kind{
		Slug: "courses", Label: "Course", Plural: "Courses",
		Table: data.Courses,
		New:   func() data.Entity { return &data.Course{} },
	}
	KindVideoCourses = Kind{
		Slug: "video-courses", Label: "Video Course", Plural: "Video Courses",
		Table: data.VideoCourses,
		New:   func() data.Entity { return &data.VideoCourse{} },
	}
	KindBlog = Kind{
		Slug: "blog", Label: "Blog Post", Plural: "Blog Posts",
		Table:        data.BlogPosts,
		PublicFilter: []data.Eq{{Column: data.ColumnPublished, Value: true}},
		New:          func() data.Entity { return &data.BlogPost{} },
	}
	KindProjects = Kind{
		Slug: "projects", Label: "Project", Plural: "Projects",
		Table: data.Projects,
		New:   func() data.Entity { return &data.Project{} },
	}
	KindTalks = Kind{
		Slug: "talks", Label: "Talk", Plural: "Talks & Events",
		Table: data.TalksEvents,
		New:   func() data.Entity { return &data.TalkEvent{} },
	}
	KindCompanies = Kind{
		Slug: "companies", Label: "Company", Plural: "Companies",
		Table: data.Companies,
		New:   func() data.Entity { return &data.Company{} },
	}
)

// Kinds lists every content kind in display order.
var Kinds = []Kind{KindCourses, KindVideoCourses, KindBlog, KindProjects, KindTalks, KindCompanies}

// KindBySlug looks a kind up by its URL segment.
func KindBySlug(slug string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Slug == slug {
			return k, true
		}
	}
	return Kind{}, false
}

// KindByTable looks a kind up by its table name.
func KindByTable(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Table.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}
