// Package sheetstest provides an in-memory record gateway for service tests.
package sheetstest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	pkgerrors "github.com/lemonhouse/storefront/pkg/errors"
	"github.com/lemonhouse/storefront/pkg/sheets"
)

// Call records one gateway invocation.
type Call struct {
	Op         string
	Collection sheets.Collection
	Field      string
	Value      string
	Row        sheets.Row
}

// Gateway stores rows per collection and matches fields by their text form.
type Gateway struct {
	mu    sync.Mutex
	rows  map[sheets.Collection][]sheets.Row
	fail  map[string]error
	calls []Call

	// OnCreate, when set, decorates rows before they are stored (for example to assign ids).
	OnCreate func(col sheets.Collection, row sheets.Row) sheets.Row
}

var _ sheets.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{
		rows: map[sheets.Collection][]sheets.Row{},
		fail: map[string]error{},
	}
}

// Seed appends rows to a collection.
func (g *Gateway) Seed(col sheets.Collection, rows ...sheets.Row) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, row := range rows {
		g.rows[col] = append(g.rows[col], clone(row))
	}
}

// FailOn makes every call of op ("query", "list", "create", "update", "delete") on col fail.
func (g *Gateway) FailOn(op string, col sheets.Collection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[failKey(op, col)] = pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%s %s unavailable", col, op), "sheets request failed")
}

// Calls returns the recorded calls in order.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Call, len(g.calls))
	copy(out, g.calls)
	return out
}

// CallCount counts recorded calls of op on col.
func (g *Gateway) CallCount(op string, col sheets.Collection) int {
	count := 0
	for _, c := range g.Calls() {
		if c.Op == op && c.Collection == col {
			count++
		}
	}
	return count
}

// Rows returns a copy of the stored rows.
func (g *Gateway) Rows(col sheets.Collection) []sheets.Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sheets.Row, 0, len(g.rows[col]))
	for _, row := range g.rows[col] {
		out = append(out, clone(row))
	}
	return out
}

func (g *Gateway) Query(_ context.Context, col sheets.Collection, field, value string) ([]sheets.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Op: "query", Collection: col, Field: field, Value: value})
	if err := g.fail[failKey("query", col)]; err != nil {
		return nil, err
	}
	out := []sheets.Row{}
	for _, row := range g.rows[col] {
		if row.String(field) == value {
			out = append(out, clone(row))
		}
	}
	return out, nil
}

func (g *Gateway) List(_ context.Context, col sheets.Collection) ([]sheets.Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Op: "list", Collection: col})
	if err := g.fail[failKey("list", col)]; err != nil {
		return nil, err
	}
	out := make([]sheets.Row, 0, len(g.rows[col]))
	for _, row := range g.rows[col] {
		out = append(out, clone(row))
	}
	return out, nil
}

func (g *Gateway) Create(_ context.Context, col sheets.Collection, row sheets.Row) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Op: "create", Collection: col, Row: clone(row)})
	if err := g.fail[failKey("create", col)]; err != nil {
		return err
	}
	stored := clone(row)
	if g.OnCreate != nil {
		stored = g.OnCreate(col, stored)
	}
	g.rows[col] = append(g.rows[col], stored)
	return nil
}

func (g *Gateway) Update(_ context.Context, col sheets.Collection, keyField, keyValue string, row sheets.Row) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Op: "update", Collection: col, Field: keyField, Value: keyValue, Row: clone(row)})
	if err := g.fail[failKey("update", col)]; err != nil {
		return err
	}
	matched := false
	for _, existing := range g.rows[col] {
		if existing.String(keyField) == keyValue {
			matched = true
			for k, v := range row {
				existing[k] = v
			}
		}
	}
	if !matched {
		return missing(col, "update", keyField, keyValue)
	}
	return nil
}

func (g *Gateway) Delete(_ context.Context, col sheets.Collection, keyField, keyValue string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Op: "delete", Collection: col, Field: keyField, Value: keyValue})
	if err := g.fail[failKey("delete", col)]; err != nil {
		return err
	}
	kept := make([]sheets.Row, 0, len(g.rows[col]))
	for _, existing := range g.rows[col] {
		if existing.String(keyField) != keyValue {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(g.rows[col]) {
		return missing(col, "delete", keyField, keyValue)
	}
	g.rows[col] = kept
	return nil
}

// missing mirrors the client's answer to a 404 on a keyed write.
func missing(col sheets.Collection, op, keyField, keyValue string) error {
	statusErr := &sheets.StatusError{Status: http.StatusNotFound, URL: fmt.Sprintf("%s/%s/%s", col, keyField, keyValue)}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, statusErr, fmt.Sprintf("%s %s request failed", col, op))
}

func failKey(op string, col sheets.Collection) string {
	return op + ":" + string(col)
}

func clone(row sheets.Row) sheets.Row {
	out := make(sheets.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
