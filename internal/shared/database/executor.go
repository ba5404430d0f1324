package database

import (
	"context"
	"database/sql"
	"errors"
)

// ResultSet is a tabular query result with column order preserved.
type ResultSet struct {
	Columns []string
	Rows    []map[string]interface{}
}

func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// Query executes a read statement with named parameters under the configured
// query timeout and materializes the full result set.
func (db *DB) Query(ctx context.Context, query string, params map[string]interface{}) (*ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout)
	defer cancel()

	rows, err := db.rawRows(ctx, query, params)
	if err != nil {
		return nil, db.classify(ctx, err)
	}
	defer rows.Close()

	rs, err := scanAll(rows)
	if err != nil {
		return nil, db.classify(ctx, err)
	}
	return rs, nil
}

// QueryRows executes a read statement and hands back the live cursor for
// streaming consumers. The caller must close the rows and call the returned
// cancel func on every exit path, or the connection leaks.
func (db *DB) QueryRows(ctx context.Context, query string, params map[string]interface{}) (*sql.Rows, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout)

	rows, err := db.rawRows(ctx, query, params)
	if err != nil {
		cancel()
		return nil, nil, db.classify(ctx, err)
	}
	return rows, cancel, nil
}

func (db *DB) rawRows(ctx context.Context, query string, params map[string]interface{}) (*sql.Rows, error) {
	tx := db.GORM.WithContext(ctx)
	if len(params) > 0 {
		return tx.Raw(query, params).Rows()
	}
	return tx.Raw(query).Rows()
}

func (db *DB) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &QueryTimeoutError{Timeout: db.queryTimeout}
	}
	return &QueryExecutionError{Err: err}
}

func scanAll(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			record[col] = normalizeValue(values[i])
		}
		rs.Rows = append(rs.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Drivers hand back []byte for TEXT columns; keep the API string-typed.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
