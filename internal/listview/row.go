// Package listview builds the view state shown by admin list pages and public
// card grids. Nothing in it performs I/O.
package listview

import (
	"eduplatform/internal/data"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Link is an external link shown on a card.
type Link struct {
	Label string
	URL   string
}

// Row is the display form of one record.
type Row struct {
	ID       string
	Title    string
	Summary  string
	Status   string
	Badges   []string
	Links    []Link
	ImageURL string
	Featured bool
	Date     *time.Time
	// Upcoming is only meaningful for talks.
	Upcoming bool
	// search holds the lower-cased text matched by the list search box.
	search []string
}

// Matches reports whether the row contains term in one of its searchable
// fields, ignoring case. An empty term matches everything.
func (r Row) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, s := range r.search {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// Describe converts a record into a Row. now decides whether a talk is upcoming.
func Describe(rec data.Entity, now time.Time) Row {
	row := Row{ID: rec.Base().ID}
	switch v := rec.(type) {
	case *data.Course:
		row.Title, row.Summary = v.Title, v.Description
		row.Badges = nonEmpty(v.Level, v.Duration, Price(v.Price))
		row.Featured, row.ImageURL = v.IsFeatured, v.ImageURL
		row.search = lower(v.Title, v.Description)
	case *data.VideoCourse:
		row.Title, row.Summary = v.Title, v.Description
		row.Badges = nonEmpty(v.Level, v.Duration, Price(v.Price))
		row.Featured, row.ImageURL = v.IsFeatured, v.ImageURL
		row.Links = links("Watch", v.VideoURL)
		row.search = lower(v.Title, v.Description)
	case *data.BlogPost:
		row.Title, row.Summary = v.Title, v.Excerpt
		if row.Summary == "" {
			row.Summary = Truncate(v.Content, 160)
		}
		row.Status = "Draft"
		if v.Published {
			row.Status = "Published"
		}
		created := v.CreatedAt
		row.Date, row.ImageURL = &created, v.ImageURL
		row.search = lower(v.Title, v.Excerpt)
	case *data.Project:
		row.Title, row.Summary, row.Status = v.Title, v.Description, v.Status
		row.Badges = append(nonEmpty(v.Category), v.Technologies...)
		row.Featured, row.ImageURL = v.IsFeatured, v.ImageURL
		row.Links = append(links("Code", v.GithubURL), links("Demo", v.DemoURL)...)
		row.search = lower(append([]string{v.Title, v.Description, v.Category}, v.Technologies...)...)
	case *data.TalkEvent:
		row.Title, row.Summary = v.Title, v.Description
		row.Upcoming = v.IsUpcoming(now)
		row.Status = "Past"
		if row.Upcoming {
			row.Status = "Upcoming"
		}
		row.Badges = nonEmpty(v.EventType, v.EventName, v.Location)
		row.Featured, row.ImageURL, row.Date = v.IsFeatured, v.ImageURL, v.EventDate
		row.Links = append(links("Register", v.RegistrationURL), links("Slides", v.SlidesURL)...)
		row.Links = append(row.Links, links("Video", v.VideoURL)...)
		row.search = lower(v.Title, v.Description, v.Location, v.EventName)
	case *data.Company:
		row.Title, row.Summary = v.Name, v.Description
		row.Badges = nonEmpty(v.PartnershipType)
		row.ImageURL = v.LogoURL
		row.Links = links("Website", v.WebsiteURL)
		row.search = lower(v.Name, v.Description, v.PartnershipType)
	}
	return row
}

// Price formats a price for display; zero is shown as Free.
func Price(p decimal.Decimal) string {
	if p.IsZero() {
		return "Free"
	}
	return "$" + p.StringFixed(2)
}

// Truncate shortens s to at most n runes, cutting at a word boundary when it can.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func lower(vals ...string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.ToLower(v)
	}
	return out
}

func links(label, url string) []Link {
	if url == "" {
		return nil
	}
	return []Link{{Label: label, URL: url}}
}
