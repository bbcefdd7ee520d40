// Package diagnostics checks that the store is reachable and the schema is in place.
package diagnostics

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Tables are the tables every installation must have.
var Tables = []string{
	"customers",
	"categories",
	"products",
	"sales",
	"sales_details",
	"stock_movements",
	"suppliers",
	"expenses",
	"purchases",
}

// TableStatus is the outcome of counting one table.
type TableStatus struct {
	Name  string `json:"name"`
	Rows  int64  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// Report summarises a Check run.
type Report struct {
	OK      bool          `json:"ok"`
	Missing []string      `json:"missing,omitempty"`
	Tables  []TableStatus `json:"tables"`
}

// Counter counts the rows of a table.
type Counter interface {
	CountRows(ctx context.Context, table string) (int64, error)
}

type poolCounter struct {
	pool *pgxpool.Pool
}

// NewPoolCounter counts rows through pool.
func NewPoolCounter(pool *pgxpool.Pool) Counter {
	return poolCounter{pool: pool}
}

// CountRows only accepts names from Tables; they are interpolated verbatim.
func (c poolCounter) CountRows(ctx context.Context, table string) (int64, error) {
	if !known(table) {
		return 0, shared.Validation("table", "unknown table "+table)
	}
	var n int64
	err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func known(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

// Checker runs store diagnostics.
type Checker struct {
	counter   Counter
	configErr error
}

// NewChecker builds a checker. configErr is the store configuration error, if
// any; when set Check reports it without touching the store.
func NewChecker(counter Counter, configErr error) *Checker {
	return &Checker{counter: counter, configErr: configErr}
}

// Check counts every table. One failing table does not stop the others.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{Tables: make([]TableStatus, len(Tables))}
	for i, name := range Tables {
		report.Tables[i].Name = name
	}
	var notConfigured *shared.NotConfiguredError
	if errors.As(c.configErr, &notConfigured) {
		report.Missing = notConfigured.Missing
		for i := range report.Tables {
			report.Tables[i].Error = c.configErr.Error()
		}
		return report
	}
	if c.configErr != nil || c.counter == nil {
		err := c.configErr
		if err == nil {
			err = shared.ErrNotConfigured
		}
		for i := range report.Tables {
			report.Tables[i].Error = err.Error()
		}
		return report
	}

	var mu sync.Mutex
	ok := true
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range Tables {
		i, name := i, name
		g.Go(func() error {
			n, err := c.counter.CountRows(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Tables[i].Error = err.Error()
				ok = false
				return nil
			}
			report.Tables[i].Rows = n
			return nil
		})
	}
	_ = g.Wait()
	report.OK = ok
	return report
}
