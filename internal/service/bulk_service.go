package service

import (
	"bytes"
	"context"
	"eduplatform/internal/data"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/reflectx"
)

// Bulk operations.
const (
	OpDelete    = "delete"
	OpUpdate    = "update"
	OpPublish   = "publish"
	OpUnpublish = "unpublish"
	OpFeature   = "feature"
	OpUnfeature = "unfeature"
)

// BulkRequest is the decoded body of POST /api/bulk.
type BulkRequest struct {
	Operation string
	Table     string
	IDs       []string
	// Data holds the partial record for update, keyed by column.
	Data map[string]json.RawMessage
}

// BulkResult reports a completed bulk operation.
type BulkResult struct {
	Success      bool   `json:"success"`
	AffectedRows int64  `json:"affectedRows"`
	Operation    string `json:"operation"`
	Table        string `json:"table"`
}

type bulkWire struct {
	Operation string          `json:"operation"`
	Table     string          `json:"table"`
	IDs       json.RawMessage `json:"ids"`
	Data      json.RawMessage `json:"data"`
}

// ParseBulkRequest decodes and checks the shape of a bulk request body.
func ParseBulkRequest(body []byte) (BulkRequest, error) {
	var w bulkWire
	if err := json.Unmarshal(body, &w); err != nil {
		return BulkRequest{}, invalid("Invalid request parameters")
	}
	ids := bytes.TrimSpace(w.IDs)
	if w.Operation == "" || w.Table == "" || len(ids) == 0 || bytes.Equal(ids, []byte("null")) {
		return BulkRequest{}, invalid("Invalid request parameters")
	}
	req := BulkRequest{Operation: w.Operation, Table: w.Table}
	if ids[0] != '[' {
		return BulkRequest{}, invalid("Invalid request parameters")
	}
	if err := json.Unmarshal(ids, &req.IDs); err != nil {
		return BulkRequest{}, &ValidationError{
			Message: "Invalid request parameters",
			Fields:  []FieldError{{Field: "ids", Reason: "must be a list of identifiers"}},
		}
	}
	raw := bytes.TrimSpace(w.Data)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &req.Data); err != nil {
			return BulkRequest{}, &ValidationError{
				Message: "Invalid request parameters",
				Fields:  []FieldError{{Field: "data", Reason: "must be an object"}},
			}
		}
	}
	return req, nil
}

// BulkService applies one operation to many rows of a table.
type BulkService struct {
	store  Store
	now    func() time.Time
	mapper *reflectx.Mapper
}

// NewBulkService creates a new BulkService.
func NewBulkService(store Store) *BulkService {
	return &BulkService{
		store:  store,
		now:    time.Now,
		mapper: reflectx.NewMapperFunc("db", strings.ToLower),
	}
}

// Execute validates req and runs it. Any data-access failure fails the whole
// operation; rows already changed by the store are not reported.
func (s *BulkService) Execute(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	kind, ok := KindByTable(req.Table)
	if !ok {
		return nil, &ValidationError{
			Message: "Invalid request parameters",
			Fields:  []FieldError{{Field: "table", Reason: "is not a content table"}},
		}
	}

	var set []data.Eq
	switch req.Operation {
	case OpDelete:
	case OpUpdate:
		if len(req.Data) == 0 {
			return nil, invalid("Data required for update operation")
		}
		var err error
		if set, err = s.columns(kind, req.Data); err != nil {
			return nil, err
		}
	case OpPublish, OpUnpublish:
		set = []data.Eq{{Column: data.ColumnPublished, Value: req.Operation == OpPublish}}
	case OpFeature, OpUnfeature:
		set = []data.Eq{{Column: data.ColumnIsFeatured, Value: req.Operation == OpFeature}}
	default:
		return nil, invalid("Invalid operation")
	}

	result := &BulkResult{Success: true, Operation: req.Operation, Table: req.Table}
	if len(req.IDs) == 0 {
		return result, nil
	}

	var n int64
	var err error
	if req.Operation == OpDelete {
		n, err = s.store.DeleteIn(ctx, kind.Table, req.IDs)
	} else {
		// Flag operations on a table without the flag change nothing.
		if !kind.Table.HasColumn(set[0].Column) {
			return result, nil
		}
		set = append(set, data.Eq{Column: "updated_at", Value: s.now().UTC().Truncate(time.Microsecond)})
		n, err = s.store.UpdateIn(ctx, kind.Table, req.IDs, set)
	}
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = int64(len(req.IDs))
	}
	result.AffectedRows = n
	return result, nil
}

// columns decodes a partial record into column assignments, validating each
// value with the tag of the field it lands in.
func (s *BulkService) columns(kind Kind, fields map[string]json.RawMessage) ([]data.Eq, error) {
	names := make([]string, 0, len(fields))
	for col := range fields {
		names = append(names, col)
	}
	sort.Strings(names)

	var bad []FieldError
	for _, col := range names {
		if !kind.Table.HasColumn(col) {
			bad = append(bad, FieldError{Field: col, Reason: "is not a writable column of " + kind.Table.Name})
		}
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Message: "Invalid payload", Fields: bad}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode bulk data: %w", err)
	}
	rec := kind.New()
	if err := decodeStrict(raw, rec); err != nil {
		return nil, err
	}

	v := reflect.ValueOf(rec).Elem()
	tm := s.mapper.TypeMap(v.Type())
	set := make([]data.Eq, 0, len(names))
	for _, col := range names {
		fi := tm.GetByPath(col)
		if fi == nil {
			return nil, fmt.Errorf("no field for column %s", col)
		}
		value := reflectx.FieldByIndexesReadOnly(v, fi.Index).Interface()
		if fe := validateField(col, value, fi.Field.Tag.Get("validate")); fe != nil {
			bad = append(bad, *fe)
			continue
		}
		set = append(set, data.Eq{Column: col, Value: value})
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Message: "Invalid payload", Fields: bad}
	}
	return set, nil
}
