package service

import (
	"context"
	"eduplatform/internal/data"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PricedStats summarises a kind that carries a price.
type PricedStats struct {
	Total        int             `json:"total"`
	Featured     int             `json:"featured"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type BlogStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}

type TalkStats struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Past     int `json:"past"`
}

type ProjectStats struct {
	Total    int `json:"total"`
	Featured int `json:"featured"`
}

type CompanyStats struct {
	Total int `json:"total"`
}

// Overview holds the grand totals. TotalContent leaves companies out.
type Overview struct {
	TotalContent int             `json:"totalContent"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// Stats is the body of GET /api/stats.
type Stats struct {
	Courses      PricedStats  `json:"courses"`
	VideoCourses PricedStats  `json:"videoCourses"`
	BlogPosts    BlogStats    `json:"blogPosts"`
	TalksEvents  TalkStats    `json:"talksEvents"`
	Projects     ProjectStats `json:"projects"`
	Companies    CompanyStats `json:"companies"`
	Overview     Overview     `json:"overview"`
}

// statsRow is the minimal projection read from every table.
type statsRow struct {
	ID         string              `db:"id"`
	IsFeatured bool                `db:"is_featured"`
	Price      decimal.NullDecimal `db:"price"`
	Published  bool                `db:"published"`
	EventDate  *time.Time          `db:"event_date"`
}

// StatsService computes the admin dashboard rollup.
type StatsService struct {
	store Store
	now   func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(store Store) *StatsService {
	return &StatsService{store: store, now: time.Now}
}

// Rollup reads every table concurrently and summarises the rows. A failure
// reading any table fails the whole rollup.
func (s *StatsService) Rollup(ctx context.Context) (*Stats, error) {
	var courses, videoCourses, posts, talks, projects, companies []statsRow

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(t *data.Table, dest *[]statsRow, cols ...string) {
		g.Go(func() error {
			return s.store.Select(gctx, t, dest, data.Query{Columns: append([]string{"id"}, cols...)})
		})
	}
	fetch(data.Courses, &courses, "is_featured", "price")
	fetch(data.VideoCourses, &videoCourses, "is_featured", "price")
	fetch(data.BlogPosts, &posts, "published")
	fetch(data.TalksEvents, &talks, "event_date")
	fetch(data.Projects, &projects, "is_featured")
	fetch(data.Companies, &companies)
	if err := g.Wait(); err != nil {
		return nil, &AggregateError{Message: "Failed to fetch stats", Err: err}
	}

	now := s.now()
	st := &Stats{
		Courses:      priced(courses),
		VideoCourses: priced(videoCourses),
		Projects:     ProjectStats{Total: len(projects), Featured: countFeatured(projects)},
		Companies:    CompanyStats{Total: len(companies)},
	}
	st.BlogPosts.Total = len(posts)
	for _, p := range posts {
		if p.Published {
			st.BlogPosts.Published++
		} else {
			st.BlogPosts.Drafts++
		}
	}
	st.TalksEvents.Total = len(talks)
	for _, t := range talks {
		if t.EventDate != nil && t.EventDate.After(now) {
			st.TalksEvents.Upcoming++
		} else {
			st.TalksEvents.Past++
		}
	}
	st.Overview = Overview{
		TotalContent: st.Courses.Total + st.VideoCourses.Total + st.BlogPosts.Total + st.TalksEvents.Total + st.Projects.Total,
		TotalRevenue: st.Courses.TotalRevenue.Add(st.VideoCourses.TotalRevenue),
	}
	return st, nil
}

func priced(rows []statsRow) PricedStats {
	out := PricedStats{Total: len(rows), Featured: countFeatured(rows), TotalRevenue: decimal.Zero}
	for _, r := range rows {
		if r.Price.Valid {
			out.TotalRevenue = out.TotalRevenue.Add(r.Price.Decimal)
		}
	}
	return out
}

func countFeatured(rows []statsRow) int {
	n := 0
	for _, r := range rows {
		if r.IsFeatured {
			n++
		}
	}
	return n
}
