package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/koba/snapdiff/internal/mapping"
	"github.com/koba/snapdiff/internal/primarykey"
	"github.com/koba/snapdiff/internal/schema"
)

// Snapshot represents a schema snapshot
type Snapshot struct {
	Metadata map[string]string
	Tables   map[string]*schema.Table
	// Failures maps table names to the error that kept them out of the snapshot
	Failures map[string]string
}

// New creates an empty snapshot
func New() *Snapshot {
	return &Snapshot{
		Metadata: make(map[string]string),
		Tables:   make(map[string]*schema.Table),
		Failures: make(map[string]string),
	}
}

// Table returns the named table, or nil
func (s *Snapshot) Table(name string) *schema.Table {
	return s.Tables[name]
}

// TableNames returns the table names in sorted order
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generator adds objects derived from the mapping model to a snapshot object
type Generator interface {
	AddTo(ctx context.Context, obj schema.Object, control primarykey.Control) error
}

// Builder builds snapshots from a mapping model
type Builder struct {
	source     mapping.Source
	generators []Generator
	control    Control
	log        hclog.Logger
	workers    int
}

// NewBuilder creates a new snapshot builder
func NewBuilder(source mapping.Source, control Control, log hclog.Logger, workers int, generators ...Generator) *Builder {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		source:     source,
		generators: generators,
		control:    control,
		log:        log,
		workers:    workers,
	}
}

// Build snapshots the given tables, or every table of the mapping model when
// tables is empty. A table that fails is recorded in Failures and does not
// stop the others.
func (b *Builder) Build(ctx context.Context, tables []string) (*Snapshot, error) {
	snap := New()
	snap.Metadata["created_at"] = time.Now().Format(time.RFC3339)

	if !b.control.ShouldInclude(schema.TypeTable) {
		return snap, nil
	}

	if len(tables) == 0 {
		var err error
		tables, err = b.source.ListTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get all tables: %w", err)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, name := range tables {
		name := name
		g.Go(func() error {
			table, err := b.buildTable(gctx, name)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if errors.Is(err, primarykey.ErrInvalidExample) || gctx.Err() != nil {
					return fmt.Errorf("failed to snapshot table %s: %w", name, err)
				}
				b.log.Warn("skipping table", "table", name, "error", err)
				snap.Failures[name] = err.Error()
				return nil
			}

			snap.Tables[name] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.log.Info("snapshot built", "tables", len(snap.Tables), "failures", len(snap.Failures))
	return snap, nil
}

func (b *Builder) buildTable(ctx context.Context, name string) (*schema.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapped, err := b.source.LookupTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up table: %w", err)
	}

	table := schema.NewTable(mapped.Name)
	if b.control.ShouldInclude(schema.TypeColumn) {
		for _, c := range mapped.Columns {
			table.AddColumn(c)
		}
	}

	for _, gen := range b.generators {
		if err := gen.AddTo(ctx, table, b.control); err != nil {
			return nil, err
		}
	}

	return table, nil
}
