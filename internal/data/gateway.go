package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// Eq is an equality condition on a column.
type Eq struct {
	Column string
	Value  interface{}
}

// Query narrows a Select.
type Query struct {
	// Columns is the projection; empty means every column.
	Columns []string
	Where   []Eq
	// OrderBy defaults to the table's natural order column.
	OrderBy   string
	Ascending bool
	Limit     int
}

// SearchQuery is a case-insensitive substring match on a table's title-like
// and description-like columns. Where narrows the candidate rows.
type SearchQuery struct {
	Columns []string
	Term    string
	Where   []Eq
	Limit   int
}

// Gateway performs table-scoped reads and writes over a sqlx connection pool.
type Gateway struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewGateway creates a new Gateway.
func NewGateway(db *sqlx.DB) *Gateway {
	return &Gateway{db: db, now: time.Now}
}

// Select loads the rows of t matching q into dest, which must be a pointer to a slice.
func (g *Gateway) Select(ctx context.Context, t *Table, dest interface{}, q Query) error {
	cols, err := projection(t, q.Columns)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(cols, ", "), t.Name)

	args := make([]interface{}, 0, len(q.Where))
	for i, cond := range q.Where {
		if !t.knows(cond.Column) {
			return fmt.Errorf("unknown column %q on %s", cond.Column, t.Name)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = ?", cond.Column)
		args = append(args, cond.Value)
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = t.OrderBy
	}
	if !t.knows(orderBy) {
		return fmt.Errorf("unknown order column %q on %s", orderBy, t.Name)
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", orderBy, direction)

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	if err := g.db.SelectContext(ctx, dest, g.db.Rebind(sb.String()), args...); err != nil {
		return fmt.Errorf("failed to select from %s: %w", t.Name, err)
	}
	return nil
}

// Get loads the row of t with the given id into dest. Extra conditions narrow
// the match, so a row failing them is reported as ErrNotFound.
func (g *Gateway) Get(ctx context.Context, t *Table, dest interface{}, id string, where ...Eq) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE id = ?", strings.Join(t.AllColumns(), ", "), t.Name)
	args := []interface{}{id}
	for _, cond := range where {
		if !t.knows(cond.Column) {
			return fmt.Errorf("unknown column %q on %s", cond.Column, t.Name)
		}
		fmt.Fprintf(&sb, " AND %s = ?", cond.Column)
		args = append(args, cond.Value)
	}

	if err := g.db.GetContext(ctx, dest, g.db.Rebind(sb.String()), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", t.Name, id, ErrNotFound)
		}
		return fmt.Errorf("failed to get %s by id: %w", t.Name, err)
	}
	return nil
}

// Insert stores rec as a new row of t. It assigns the id and created_at, and
// never lets updated_at fall behind created_at.
func (g *Gateway) Insert(ctx context.Context, t *Table, rec Entity) error {
	meta := rec.Base()
	meta.ID = uuid.NewString()
	meta.CreatedAt = g.now().UTC().Truncate(time.Microsecond)
	if meta.UpdatedAt.Before(meta.CreatedAt) {
		meta.UpdatedAt = meta.CreatedAt
	}

	cols := t.AllColumns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", t.Name, strings.Join(cols, ", "), strings.Join(cols, ", :"))
	if _, err := g.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
	}
	return nil
}

// Update overwrites every writable column and updated_at of the row with rec's id.
func (g *Gateway) Update(ctx context.Context, t *Table, rec Entity) error {
	sets := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", c, c))
	}
	sets = append(sets, "updated_at = :updated_at")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", t.Name, strings.Join(sets, ", "))
	result, err := g.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.Name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", t.Name, rec.Base().ID, ErrNotFound)
	}
	return nil
}

// Delete removes the row of t with the given id. Deleting a missing id is not an error.
func (g *Gateway) Delete(ctx context.Context, t *Table, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.Name)
	if _, err := g.db.ExecContext(ctx, g.db.Rebind(query), id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.Name, err)
	}
	return nil
}

// DeleteIn removes every row of t whose id is in ids. The returned count is
// -1 when the driver cannot report it.
func (g *Gateway) DeleteIn(ctx context.Context, t *Table, ids []string) (int64, error) {
	query, args, err := sqlx.In(fmt.Sprintf("DELETE FROM %s WHERE id IN (?)", t.Name), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk delete: %w", err)
	}
	result, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete from %s: %w", t.Name, err)
	}
	return affected(result), nil
}

// UpdateIn applies set to every row of t whose id is in ids. The returned
// count is -1 when the driver cannot report it.
func (g *Gateway) UpdateIn(ctx context.Context, t *Table, ids []string, set []Eq) (int64, error) {
	if len(set) == 0 {
		return 0, errors.New("bulk update needs at least one column")
	}
	assignments := make([]string, 0, len(set))
	args := make([]interface{}, 0, len(set)+1)
	for _, s := range set {
		if !t.knows(s.Column) || s.Column == "id" || s.Column == "created_at" {
			return 0, fmt.Errorf("column %q cannot be bulk updated on %s", s.Column, t.Name)
		}
		assignments = append(assignments, s.Column+" = ?")
		args = append(args, s.Value)
	}
	args = append(args, ids)

	query, args, err := sqlx.In(fmt.Sprintf("UPDATE %s SET %s WHERE id IN (?)", t.Name, strings.Join(assignments, ", ")), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk update: %w", err)
	}
	result, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update %s: %w", t.Name, err)
	}
	return affected(result), nil
}

// Search loads into dest up to q.Limit rows of t whose title-like or
// description-like column contains q.Term, ignoring ASCII case.
func (g *Gateway) Search(ctx context.Context, t *Table, dest interface{}, q SearchQuery) error {
	cols, err := projection(t, q.Columns)
	if err != nil {
		return err
	}
	pattern := "%" + escapeLike(strings.ToLower(q.Term)) + "%"

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE (LOWER(%s) LIKE ? ESCAPE '!' OR LOWER(%s) LIKE ? ESCAPE '!')",
		strings.Join(cols, ", "), t.Name, t.TitleColumn, t.TextColumn)
	args := []interface{}{pattern, pattern}
	for _, cond := range q.Where {
		if !t.knows(cond.Column) {
			return fmt.Errorf("unknown column %q on %s", cond.Column, t.Name)
		}
		fmt.Fprintf(&sb, " AND %s = ?", cond.Column)
		args = append(args, cond.Value)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	if err := g.db.SelectContext(ctx, dest, g.db.Rebind(sb.String()), args...); err != nil {
		return fmt.Errorf("failed to search %s: %w", t.Name, err)
	}
	return nil
}

func projection(t *Table, cols []string) ([]string, error) {
	if len(cols) == 0 {
		return t.AllColumns(), nil
	}
	for _, c := range cols {
		if !t.knows(c) {
			return nil, fmt.Errorf("unknown column %q on %s", c, t.Name)
		}
	}
	return cols, nil
}

func affected(result sql.Result) int64 {
	n, err := result.RowsAffected()
	if err != nil {
		return -1
	}
	return n
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
