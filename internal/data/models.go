package data

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Meta holds the fields every content record shares.
type Meta struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Base returns the shared fields of a record.
func (m *Meta) Base() *Meta { return m }

// Entity is implemented by every content record through its embedded Meta.
type Entity interface {
	Base() *Meta
}

// Course is an in-person or live course.
type Course struct {
	Meta
	Title       string          `db:"title" json:"title" validate:"notblank"`
	Description string          `db:"description" json:"description" validate:"notblank"`
	Level       string          `db:"level" json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration    string          `db:"duration" json:"duration"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsFeatured  bool            `db:"is_featured" json:"is_featured"`
	ImageURL    string          `db:"image_url" json:"image_url" validate:"omitempty,url"`
}

// VideoCourse is a recorded course.
type VideoCourse struct {
	Meta
	Title       string          `db:"title" json:"title" validate:"notblank"`
	Description string          `db:"description" json:"description" validate:"notblank"`
	Level       string          `db:"level" json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration    string          `db:"duration" json:"duration"`
	Price       decimal.Decimal `db:"price" json:"price"`
	VideoURL    string          `db:"video_url" json:"video_url" validate:"omitempty,url"`
	IsFeatured  bool            `db:"is_featured" json:"is_featured"`
	ImageURL    string          `db:"image_url" json:"image_url" validate:"omitempty,url"`
}

// BlogPost is an article. Unpublished posts are drafts and stay out of public pages.
type BlogPost struct {
	Meta
	Title     string `db:"title" json:"title" validate:"notblank"`
	Excerpt   string `db:"excerpt" json:"excerpt"`
	Content   string `db:"content" json:"content" validate:"notblank"`
	Slug      string `db:"slug" json:"slug"`
	Published bool   `db:"published" json:"published"`
	ImageURL  string `db:"image_url" json:"image_url" validate:"omitempty,url"`
}

// Project statuses.
const (
	ProjectPlanning   = "Planning"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
)

// Project is a portfolio project.
type Project struct {
	Meta
	Title        string     `db:"title" json:"title" validate:"notblank"`
	Description  string     `db:"description" json:"description" validate:"notblank"`
	Category     string     `db:"category" json:"category"`
	Status       string     `db:"status" json:"status" validate:"omitempty,oneof=Planning 'In Progress' Completed 'On Hold'"`
	Technologies StringList `db:"technologies" json:"technologies"`
	GithubURL    string     `db:"github_url" json:"github_url" validate:"omitempty,url"`
	DemoURL      string     `db:"demo_url" json:"demo_url" validate:"omitempty,url"`
	IsFeatured   bool       `db:"is_featured" json:"is_featured"`
	ImageURL     string     `db:"image_url" json:"image_url" validate:"omitempty,url"`
}

// TalkEvent is a talk, panel, podcast or other appearance.
type TalkEvent struct {
	Meta
	Title           string     `db:"title" json:"title" validate:"notblank"`
	Description     string     `db:"description" json:"description" validate:"notblank"`
	EventType       string     `db:"event_type" json:"event_type" validate:"omitempty,oneof=talk panel podcast interview commentary mention keynote workshop conference"`
	EventName       string     `db:"event_name" json:"event_name"`
	EventDate       *time.Time `db:"event_date" json:"event_date" validate:"required"`
	Location        string     `db:"location" json:"location" validate:"notblank"`
	RegistrationURL string     `db:"registration_url" json:"registration_url" validate:"omitempty,url"`
	SlidesURL       string     `db:"slides_url" json:"slides_url" validate:"omitempty,url"`
	VideoURL        string     `db:"video_url" json:"video_url" validate:"omitempty,url"`
	IsFeatured      bool       `db:"is_featured" json:"is_featured"`
	ImageURL        string     `db:"image_url" json:"image_url" validate:"omitempty,url"`
}

// IsUpcoming reports whether the event is still ahead of now. Events without
// a date count as past.
func (e *TalkEvent) IsUpcoming(now time.Time) bool {
	return e.EventDate != nil && e.EventDate.After(now)
}

// Company is a partner organisation.
type Company struct {
	Meta
	Name            string `db:"name" json:"name" validate:"notblank"`
	Description     string `db:"description" json:"description" validate:"notblank"`
	PartnershipType string `db:"partnership_type" json:"partnership_type" validate:"omitempty,oneof=university training company charity"`
	WebsiteURL      string `db:"website_url" json:"website_url" validate:"omitempty,url"`
	LogoURL         string `db:"logo_url" json:"logo_url" validate:"omitempty,url"`
}

// StringList is an ordered list of labels stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}

// MarshalJSON renders a nil list as an empty array.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
