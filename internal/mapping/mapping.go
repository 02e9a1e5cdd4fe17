package mapping

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrTableNotFound is returned when the mapping model has no such table
var ErrTableNotFound = errors.New("table not found in mapping model")

// PrimaryKey is the primary key as declared by the mapping model
type PrimaryKey struct {
	Name    string
	Columns []string
}

// Table is a mapped table
type Table struct {
	Name       string
	Columns    []string
	PrimaryKey *PrimaryKey
}

// Source provides read-only access to the mapping model
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	LookupTable(ctx context.Context, name string) (*Table, error)
}

// Model is an in-memory mapping model
type Model struct {
	tables map[string]*Table
}

// NewModel creates a model holding the given tables
func NewModel(tables ...*Table) *Model {
	m := &Model{tables: make(map[string]*Table)}
	for _, t := range tables {
		m.Add(t)
	}
	return m
}

// Add registers a table, replacing any table with the same name
func (m *Model) Add(t *Table) {
	m.tables[t.Name] = t
}

// ListTables returns the table names in sorted order
func (m *Model) ListTables(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LookupTable returns the named table
func (m *Model) LookupTable(ctx context.Context, name string) (*Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}
