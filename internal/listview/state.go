package listview

import (
	"eduplatform/internal/data"
	"eduplatform/internal/service"
	"strings"
	"time"
)

// FilterAll shows every row.
const FilterAll = "all"

// Filter is one of the predicates offered above a list.
type Filter struct {
	Value string
	Label string
	match func(rec data.Entity, row Row) bool
}

// FilterCount is a filter with the number of loaded rows it selects.
type FilterCount struct {
	Value  string
	Label  string
	Count  int
	Active bool
}

// State is the view state of a list page: the loaded collection plus the
// current search term and filter. Filtering never triggers I/O.
//
// State reflects the collection as loaded. A successful delete is never
// applied locally: HTMX clients drop the confirmed row and plain requests
// reload the list. Only failures are applied, to show the error.
type State struct {
	Kind   service.Kind
	Items  []data.Entity
	Search string
	Filter string
	Now    time.Time
	// Err is the message of the last failed action, if any.
	Err string
}

// New creates the initial state for a freshly loaded collection. Unknown
// filters fall back to all.
func New(kind service.Kind, items []data.Entity, search, filter string, now time.Time) State {
	s := State{Kind: kind, Items: items, Search: strings.TrimSpace(search), Filter: FilterAll, Now: now}
	for _, f := range Filters(kind) {
		if f.Value == filter {
			s.Filter = filter
		}
	}
	return s
}

// Filtered reports whether the search term or the filter narrows the list.
func (s State) Filtered() bool {
	return s.Search != "" || s.Filter != FilterAll
}

// Visible returns the rows matching the search term and the active filter,
// in loaded order.
func (s State) Visible() []Row {
	f := s.activeFilter()
	out := make([]Row, 0, len(s.Items))
	for _, rec := range s.Items {
		row := Describe(rec, s.Now)
		if !row.Matches(s.Search) {
			continue
		}
		if f.match != nil && !f.match(rec, row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Counts returns every filter for the kind with the number of loaded rows it
// selects, ignoring the search term.
func (s State) Counts() []FilterCount {
	filters := Filters(s.Kind)
	rows := make([]Row, len(s.Items))
	for i, rec := range s.Items {
		rows[i] = Describe(rec, s.Now)
	}
	out := make([]FilterCount, len(filters))
	for i, f := range filters {
		n := len(rows)
		if f.match != nil {
			n = 0
			for j, rec := range s.Items {
				if f.match(rec, rows[j]) {
					n++
				}
			}
		}
		out[i] = FilterCount{Value: f.Value, Label: f.Label, Count: n, Active: f.Value == s.Filter}
	}
	return out
}

// Action is a confirmed outcome applied to a State.
type Action interface {
	apply(s State) State
}

// DeleteFailed records that removing the row with ID failed.
type DeleteFailed struct {
	ID      string
	Message string
}

func (a DeleteFailed) apply(s State) State {
	s.Err = a.Message
	return s
}

// Apply returns the state after a. The receiver is left unchanged.
func (s State) Apply(a Action) State {
	return a.apply(s)
}

func (s State) activeFilter() Filter {
	for _, f := range Filters(s.Kind) {
		if f.Value == s.Filter {
			return f
		}
	}
	return Filter{Value: FilterAll, Label: "All"}
}

// Filters returns the filters offered for kind, starting with all.
func Filters(kind service.Kind) []Filter {
	all := Filter{Value: FilterAll, Label: "All"}
	featured := Filter{Value: "featured", Label: "Featured", match: func(_ data.Entity, r Row) bool { return r.Featured }}

	switch kind.Slug {
	case service.KindCourses.Slug, service.KindVideoCourses.Slug:
		out := []Filter{all, featured}
		for _, level := range []string{"Beginner", "Intermediate", "Advanced"} {
			out = append(out, Filter{Value: strings.ToLower(level), Label: level, match: levelIs(level)})
		}
		return out
	case service.KindBlog.Slug:
		return []Filter{
			all,
			{Value: "published", Label: "Published", match: func(rec data.Entity, _ Row) bool { return rec.(*data.BlogPost).Published }},
			{Value: "draft", Label: "Drafts", match: func(rec data.Entity, _ Row) bool { return !rec.(*data.BlogPost).Published }},
		}
	case service.KindTalks.Slug:
		return []Filter{
			all,
			{Value: "upcoming", Label: "Upcoming", match: func(_ data.Entity, r Row) bool { return r.Upcoming }},
			{Value: "past", Label: "Past", match: func(_ data.Entity, r Row) bool { return !r.Upcoming }},
			featured,
		}
	case service.KindProjects.Slug:
		out := []Filter{all, featured}
		for _, status := range []string{data.ProjectPlanning, data.ProjectInProgress, data.ProjectCompleted, data.ProjectOnHold} {
			out = append(out, Filter{
				Value: strings.ToLower(status),
				Label: status,
				match: func(rec data.Entity, _ Row) bool { return rec.(*data.Project).Status == status },
			})
		}
		return out
	case service.KindCompanies.Slug:
		out := []Filter{all}
		for _, p := range []string{"university", "training", "company", "charity"} {
			out = append(out, Filter{
				Value: p,
				Label: strings.ToUpper(p[:1]) + p[1:],
				match: func(rec data.Entity, _ Row) bool { return rec.(*data.Company).PartnershipType == p },
			})
		}
		return out
	}
	return []Filter{all}
}

func levelIs(level string) func(data.Entity, Row) bool {
	return func(rec data.Entity, _ Row) bool {
		switch v := rec.(type) {
		case *data.Course:
			return v.Level == level
		case *data.VideoCourse:
			return v.Level == level
		}
		return false
	}
}
