package service

import (
	"context"
	"eduplatform/internal/data"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	minSearchLength = 2
	perKindLimit    = 5
	maxResults      = 20
)

// SearchResult is one hit tagged with the kind it came from.
type SearchResult struct {
	ID          string     `db:"id" json:"id"`
	Type        string     `db:"-" json:"type"`
	Title       string     `db:"title" json:"title,omitempty"`
	Name        string     `db:"name" json:"name,omitempty"`
	Description string     `db:"description" json:"description,omitempty"`
	Excerpt     string     `db:"excerpt" json:"excerpt,omitempty"`
	CreatedAt   *time.Time `db:"created_at" json:"created_at,omitempty"`
	EventDate   *time.Time `db:"event_date" json:"event_date,omitempty"`
}

// Heading returns the title-like field of the hit.
func (r SearchResult) Heading() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
	Type    string         `json:"type"`
}

type searchTarget struct {
	tag     string
	aliases []string
	table   *data.Table
	columns []string
	// where keeps non-public rows out of the hits.
	where []data.Eq
}

var searchTargets = []searchTarget{
	{tag: "course", aliases: []string{"course", "courses"}, table: data.Courses,
		columns: []string{"id", "title", "description", "created_at"}},
	{tag: "blog", aliases: []string{"blog", "blogs"}, table: data.BlogPosts,
		columns: []string{"id", "title", "excerpt", "created_at"}, where: KindBlog.PublicFilter},
	{tag: "project", aliases: []string{"project", "projects"}, table: data.Projects,
		columns: []string{"id", "title", "description", "created_at"}},
	{tag: "talk", aliases: []string{"talk", "talks"}, table: data.TalksEvents,
		columns: []string{"id", "title", "description", "event_date", "created_at"}},
	{tag: "company", aliases: []string{"company", "companies"}, table: data.Companies,
		columns: []string{"id", "name", "description", "created_at"}},
}

// SearchService searches titles and descriptions across content kinds.
type SearchService struct {
	store Store
}

// NewSearchService creates a new SearchService.
func NewSearchService(store Store) *SearchService {
	return &SearchService{store: store}
}

// Search runs one query per selected kind concurrently and merges the hits,
// title matches first. Queries shorter than two characters return no results
// without touching the store.
func (s *SearchService) Search(ctx context.Context, q, kind string) (*SearchResponse, error) {
	if kind == "" {
		kind = "all"
	}
	resp := &SearchResponse{Results: []SearchResult{}, Query: q, Type: kind}
	if len(strings.TrimSpace(q)) < minSearchLength {
		return resp, nil
	}
	targets, err := selectTargets(kind)
	if err != nil {
		return nil, err
	}

	slots := make([][]SearchResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			var rows []SearchResult
			sq := data.SearchQuery{Columns: t.columns, Term: q, Where: t.where, Limit: perKindLimit}
			if err := s.store.Search(gctx, t.table, &rows, sq); err != nil {
				return err
			}
			for j := range rows {
				rows[j].Type = t.tag
			}
			slots[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &AggregateError{Message: "Search failed", Err: err}
	}

	for _, rows := range slots {
		resp.Results = append(resp.Results, rows...)
	}
	needle := strings.ToLower(q)
	sort.SliceStable(resp.Results, func(a, b int) bool {
		return titleMatch(resp.Results[a], needle) && !titleMatch(resp.Results[b], needle)
	})
	if len(resp.Results) > maxResults {
		resp.Results = resp.Results[:maxResults]
	}
	return resp, nil
}

func titleMatch(r SearchResult, needle string) bool {
	return strings.Contains(strings.ToLower(r.Heading()), needle)
}

func selectTargets(kind string) ([]searchTarget, error) {
	if kind == "all" {
		return searchTargets, nil
	}
	for _, t := range searchTargets {
		for _, a := range t.aliases {
			if a == kind {
				return []searchTarget{t}, nil
			}
		}
	}
	return nil, &ValidationError{
		Message: "Invalid search type",
		Fields:  []FieldError{{Field: "type", Reason: "must be one of: all course blog project talk company"}},
	}
}
