//go:build unit

package service

import (
	"context"
	"eduplatform/internal/data"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// mockStore is an in-memory Store. Rows are kept per table in insertion order.
type mockStore struct {
	mu      sync.Mutex
	rows    map[string][]data.Entity
	now     time.Time
	nextID  int
	calls   atomic.Int32
	failOn  string
	updates []bulkCall
	deletes []bulkCall

	// canned results for projections and searches, keyed by table name.
	selected map[string]interface{}
	searched map[string]interface{}
	// queries records the SearchQuery each table was searched with.
	queries map[string]data.SearchQuery
	// affected overrides the count returned by bulk operations when set.
	affected *int64
}

type bulkCall struct {
	table string
	ids   []string
	set   []data.Eq
}

var _ Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		rows:     make(map[string][]data.Entity),
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		selected: make(map[string]interface{}),
		searched: make(map[string]interface{}),
		queries:  make(map[string]data.SearchQuery),
	}
}

func (m *mockStore) fail(t *data.Table) error {
	if m.failOn == t.Name {
		return fmt.Errorf("failed to query %s: connection reset", t.Name)
	}
	return nil
}

func (m *mockStore) Select(ctx context.Context, t *data.Table, dest interface{}, q data.Query) error {
	m.calls.Add(1)
	if err := m.fail(t); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if canned, ok := m.selected[t.Name]; ok {
		reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(canned))
		return nil
	}
	out := reflect.ValueOf(dest).Elem()
	for i := len(m.rows[t.Name]) - 1; i >= 0; i-- {
		rec := m.rows[t.Name][i]
		if !matches(rec, q.Where) {
			continue
		}
		out.Set(reflect.Append(out, clone(rec)))
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, t *data.Table, dest interface{}, id string, where ...data.Eq) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.rows[t.Name] {
		if rec.Base().ID == id && matches(rec, where) {
			reflect.ValueOf(dest).Elem().Set(clone(rec).Elem())
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", t.Name, id, data.ErrNotFound)
}

func (m *mockStore) Insert(ctx context.Context, t *data.Table, rec data.Entity) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	meta := rec.Base()
	meta.ID = fmt.Sprintf("%s-%d", t.Name, m.nextID)
	meta.CreatedAt = m.now
	if meta.UpdatedAt.Before(meta.CreatedAt) {
		meta.UpdatedAt = meta.CreatedAt
	}
	m.rows[t.Name] = append(m.rows[t.Name], clone(rec).Interface().(data.Entity))
	return nil
}

func (m *mockStore) Update(ctx context.Context, t *data.Table, rec data.Entity) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, stored := range m.rows[t.Name] {
		if stored.Base().ID == rec.Base().ID {
			m.rows[t.Name][i] = clone(rec).Interface().(data.Entity)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", t.Name, rec.Base().ID, data.ErrNotFound)
}

func (m *mockStore) Delete(ctx context.Context, t *data.Table, id string) error {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[t.Name][:0]
	for _, rec := range m.rows[t.Name] {
		if rec.Base().ID != id {
			kept = append(kept, rec)
		}
	}
	m.rows[t.Name] = kept
	return nil
}

func (m *mockStore) DeleteIn(ctx context.Context, t *data.Table, ids []string) (int64, error) {
	m.calls.Add(1)
	if err := m.fail(t); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, bulkCall{table: t.Name, ids: ids})
	if m.affected != nil {
		return *m.affected, nil
	}
	return int64(len(ids)), nil
}

func (m *mockStore) UpdateIn(ctx context.Context, t *data.Table, ids []string, set []data.Eq) (int64, error) {
	m.calls.Add(1)
	if err := m.fail(t); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, bulkCall{table: t.Name, ids: ids, set: set})
	if m.affected != nil {
		return *m.affected, nil
	}
	return int64(len(ids)), nil
}

func (m *mockStore) Search(ctx context.Context, t *data.Table, dest interface{}, q data.SearchQuery) error {
	m.calls.Add(1)
	if err := m.fail(t); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[t.Name] = q
	if canned, ok := m.searched[t.Name]; ok {
		reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(canned))
	}
	return nil
}

// clone returns a pointer to a shallow copy of the record rec points to.
func clone(rec data.Entity) reflect.Value {
	v := reflect.ValueOf(rec).Elem()
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	return cp
}

// matches supports the boolean flag filters used for public reads.
func matches(rec data.Entity, where []data.Eq) bool {
	for _, cond := range where {
		switch r := rec.(type) {
		case *data.BlogPost:
			if cond.Column == data.ColumnPublished && r.Published != cond.Value {
				return false
			}
		}
	}
	return true
}
