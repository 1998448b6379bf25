package persistence

import (
	"context"
	"database/sql"
	"time"
)

// Executor interface for db/tx flexibility
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type baseRepository struct {
	db *sql.DB
}

// GetExecutor returns the transaction carried by ctx, or the DB connection
func (r baseRepository) GetExecutor(ctx context.Context) Executor {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// str scans a nullable column into a plain string
type str struct{ p *string }

func (s str) Scan(v interface{}) error {
	var ns sql.NullString
	if err := ns.Scan(v); err != nil {
		return err
	}
	*s.p = ns.String
	return nil
}

// flag scans a nullable tinyint column into a bool
type flag struct{ p *bool }

func (f flag) Scan(v interface{}) error {
	var nb sql.NullBool
	if err := nb.Scan(v); err != nil {
		return err
	}
	*f.p = nb.Bool
	return nil
}

// num scans a nullable numeric column into a float64
type num struct{ p *float64 }

func (n num) Scan(v interface{}) error {
	var nf sql.NullFloat64
	if err := nf.Scan(v); err != nil {
		return err
	}
	*n.p = nf.Float64
	return nil
}

// stamp scans a nullable datetime column into a time.Time (zero when NULL)
type stamp struct{ p *time.Time }

func (s stamp) Scan(v interface{}) error {
	var nt sql.NullTime
	if err := nt.Scan(v); err != nil {
		return err
	}
	*s.p = nt.Time
	return nil
}

// optStamp scans a nullable datetime column into a *time.Time
type optStamp struct{ p **time.Time }

func (s optStamp) Scan(v interface{}) error {
	var nt sql.NullTime
	if err := nt.Scan(v); err != nil {
		return err
	}
	if nt.Valid {
		t := nt.Time
		*s.p = &t
	} else {
		*s.p = nil
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(str{&s}); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
