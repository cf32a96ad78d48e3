// Package sql provides stream adapters for database operations using
// database/sql. A query result is a cursor: each pull scans one row, and the
// underlying *sql.Rows is closed once the cursor is exhausted, abandoned by
// its Stream or a stream derived from it, or closed explicitly.
package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Scanner is a function that scans a row into a value.
type Scanner[T any] func(*sql.Rows) (T, error)

// Queryer runs queries. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer runs statements. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Rows yields one scanned value per row of a query result.
type Rows[T any] struct {
	rows *sql.Rows
	scan Scanner[T]
	cur  T
	err  error
	done bool
}

// NewRows creates a cursor over rows. The cursor owns rows and closes it.
func NewRows[T any](rows *sql.Rows, scan Scanner[T]) *Rows[T] {
	return &Rows[T]{rows: rows, scan: scan}
}

// Query executes query and returns a cursor over its rows.
func Query[T any](ctx context.Context, db Queryer, query string, scan Scanner[T], args ...any) (*Rows[T], error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sql: query: %w", err)
	}
	return NewRows(rows, scan), nil
}

func (r *Rows[T]) Next() bool {
	if r.done {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		r.finish()
		return false
	}
	value, err := r.scan(r.rows)
	if err != nil {
		r.err = fmt.Errorf("sql: scan: %w", err)
		r.finish()
		return false
	}
	r.cur = value
	return true
}

func (r *Rows[T]) Value() T   { return r.cur }
func (r *Rows[T]) Done() bool { return r.done }

// Err returns the scan or iteration error that ended the cursor, if any.
func (r *Rows[T]) Err() error { return r.err }

// Close releases the result set.
func (r *Rows[T]) Close() error {
	r.finish()
	return r.err
}

func (r *Rows[T]) finish() {
	if r.done {
		return
	}
	var zero T
	r.cur, r.done = zero, true
	if err := r.rows.Close(); err != nil && r.err == nil {
		r.err = err
	}
}

// Stream wraps the cursor in a Stream.
func (r *Rows[T]) Stream() *core.Stream[T] {
	return core.From[T](r)
}

// ExecResult contains the result of an exec operation.
type ExecResult struct {
	LastInsertId int64
	RowsAffected int64
}

// Exec executes a statement.
func Exec(ctx context.Context, db Execer, query string, args ...any) (ExecResult, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return ExecResult{}, err
	}
	lastID, _ := result.LastInsertId()
	rowsAffected, _ := result.RowsAffected()
	return ExecResult{LastInsertId: lastID, RowsAffected: rowsAffected}, nil
}

// ExecEach drains s, executing query once per element with the arguments
// bind returns. It stops at the first failing statement. The result holds
// the total of rows affected and the last insert id seen.
func ExecEach[T any](ctx context.Context, db Execer, query string, s *core.Stream[T], bind func(T) []any) (ExecResult, error) {
	var total ExecResult
	n := 0
	for s.Next() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := Exec(ctx, db, query, bind(s.Value())...)
		if err != nil {
			return total, fmt.Errorf("sql: exec element %d: %w", n, err)
		}
		total.RowsAffected += res.RowsAffected
		total.LastInsertId = res.LastInsertId
		n++
	}
	return total, nil
}

// Transaction executes fn within a database transaction. If fn returns an
// error the transaction is rolled back, otherwise it is committed.
func Transaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	return tx.Commit()
}

func scanAny(rows *sql.Rows) ([]string, []any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	values := make([]any, len(cols))
	valuePtrs := make([]any, len(cols))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, nil, err
	}
	return cols, values, nil
}

// QueryStrings queries for rows scanned into slices of strings. NULL scans
// as the empty string.
func QueryStrings(ctx context.Context, db Queryer, query string, args ...any) (*Rows[[]string], error) {
	return Query(ctx, db, query, func(rows *sql.Rows) ([]string, error) {
		_, values, err := scanAny(rows)
		if err != nil {
			return nil, err
		}
		result := make([]string, len(values))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				result[i] = ""
			case []byte:
				result[i] = string(val)
			case string:
				result[i] = val
			case int64:
				result[i] = fmt.Sprintf("%d", val)
			case float64:
				result[i] = fmt.Sprintf("%g", val)
			case bool:
				result[i] = fmt.Sprintf("%t", val)
			default:
				result[i] = fmt.Sprintf("%v", val)
			}
		}
		return result, nil
	}, args...)
}

// QueryMaps queries for rows scanned into maps keyed by column name.
func QueryMaps(ctx context.Context, db Queryer, query string, args ...any) (*Rows[map[string]any], error) {
	return Query(ctx, db, query, func(rows *sql.Rows) (map[string]any, error) {
		cols, values, err := scanAny(rows)
		if err != nil {
			return nil, err
		}
		result := make(map[string]any, len(cols))
		for i, col := range cols {
			result[col] = values[i]
		}
		return result, nil
	}, args...)
}
