package service

import (
	"bytes"
	"context"
	"eduplatform/internal/data"
	"encoding/json"
	"errors"
	"time"
)

// Store defines the table-scoped operations the services need from the data layer.
type Store interface {
	Select(ctx context.Context, t *data.Table, dest interface{}, q data.Query) error
	Get(ctx context.Context, t *data.Table, dest interface{}, id string, where ...data.Eq) error
	Insert(ctx context.Context, t *data.Table, rec data.Entity) error
	Update(ctx context.Context, t *data.Table, rec data.Entity) error
	Delete(ctx context.Context, t *data.Table, id string) error
	DeleteIn(ctx context.Context, t *data.Table, ids []string) (int64, error)
	UpdateIn(ctx context.Context, t *data.Table, ids []string, set []data.Eq) (int64, error)
	Search(ctx context.Context, t *data.Table, dest interface{}, q data.SearchQuery) error
}

var _ Store = (*data.Gateway)(nil)

// Collection is the untyped view of an EntityService used by HTTP handlers.
type Collection interface {
	Kind() Kind
	List(ctx context.Context, public bool) ([]data.Entity, error)
	Get(ctx context.Context, id string, public bool) (data.Entity, error)
	Create(ctx context.Context, body []byte) (data.Entity, error)
	Update(ctx context.Context, id string, body []byte) (data.Entity, error)
	Delete(ctx context.Context, id string) error
}

// EntityService provides the read and write operations for one content kind.
type EntityService[T any, PT interface {
	*T
	data.Entity
}] struct {
	store Store
	kind  Kind
	now   func() time.Time
}

// NewEntityService creates a new EntityService for kind.
func NewEntityService[T any, PT interface {
	*T
	data.Entity
}](store Store, kind Kind) *EntityService[T, PT] {
	return &EntityService[T, PT]{store: store, kind: kind, now: time.Now}
}

// Kind returns the content kind served.
func (s *EntityService[T, PT]) Kind() Kind { return s.kind }

// Records returns every record, newest first by the kind's natural order.
// Public reads apply the kind's visibility filter.
func (s *EntityService[T, PT]) Records(ctx context.Context, public bool) ([]PT, error) {
	q := data.Query{}
	if public {
		q.Where = s.kind.PublicFilter
	}
	var rows []PT
	if err := s.store.Select(ctx, s.kind.Table, &rows, q); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []PT{}
	}
	return rows, nil
}

// List returns every record as untyped entities.
func (s *EntityService[T, PT]) List(ctx context.Context, public bool) ([]data.Entity, error) {
	rows, err := s.Records(ctx, public)
	if err != nil {
		return nil, err
	}
	out := make([]data.Entity, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

// Record returns the record with the given id or ErrNotFound.
func (s *EntityService[T, PT]) Record(ctx context.Context, id string, public bool) (PT, error) {
	var where []data.Eq
	if public {
		where = s.kind.PublicFilter
	}
	rec := PT(new(T))
	if err := s.store.Get(ctx, s.kind.Table, rec, id, where...); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record with the given id as an untyped entity.
func (s *EntityService[T, PT]) Get(ctx context.Context, id string, public bool) (data.Entity, error) {
	rec, err := s.Record(ctx, id, public)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create decodes body into a new record, validates it and stores it.
// Client-supplied ids and timestamps are ignored.
func (s *EntityService[T, PT]) Create(ctx context.Context, body []byte) (data.Entity, error) {
	rec := PT(new(T))
	if err := decodeStrict(body, rec); err != nil {
		return nil, err
	}
	*rec.Base() = data.Meta{}
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	rec.Base().UpdatedAt = s.stamp(time.Time{})
	if err := s.store.Insert(ctx, s.kind.Table, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges body onto the stored record: only the fields present in
// body change. The id and created_at never change and updated_at always
// moves forward.
func (s *EntityService[T, PT]) Update(ctx context.Context, id string, body []byte) (data.Entity, error) {
	rec, err := s.Record(ctx, id, false)
	if err != nil {
		return nil, err
	}
	prev := *rec.Base()
	if err := decodeStrict(body, rec); err != nil {
		return nil, err
	}
	*rec.Base() = prev
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	rec.Base().UpdatedAt = s.stamp(prev.UpdatedAt)
	if err := s.store.Update(ctx, s.kind.Table, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (s *EntityService[T, PT]) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.kind.Table, id)
}

// stamp returns the current time, nudged past prev if the clock has not moved.
func (s *EntityService[T, PT]) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func decodeStrict(body []byte, dest interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return invalid("Request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return invalid("Malformed JSON body")
		case errors.As(err, &typeErr):
			return &ValidationError{Message: "Invalid payload", Fields: []FieldError{{Field: typeErr.Field, Reason: "has the wrong type"}}}
		default:
			return invalid("Invalid payload: " + err.Error())
		}
	}
	return nil
}

// NewCollections creates one EntityService per content kind, keyed by slug.
func NewCollections(store Store) map[string]Collection {
	return map[string]Collection{
		KindCourses.Slug:      NewEntityService[data.Course](store, KindCourses),
		KindVideoCourses.Slug: NewEntityService[data.VideoCourse](store, KindVideoCourses),
		KindBlog.Slug:         NewEntityService[data.BlogPost](store, KindBlog),
		KindProjects.Slug:     NewEntityService[data.Project](store, KindProjects),
		KindTalks.Slug:        NewEntityService[data.TalkEvent](store, KindTalks),
		KindCompanies.Slug:    NewEntityService[data.Company](store, KindCompanies),
	}
}
