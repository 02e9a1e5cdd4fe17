package primarykey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koba/snapdiff/internal/mapping"
	"github.com/koba/snapdiff/internal/schema"
)

// ErrInvalidExample is returned when the generator is handed an object it
// cannot work on or the mapping model describes a malformed primary key.
var ErrInvalidExample = errors.New("invalid example")

// BackingIndexPrefix prefixes the name of a primary key's backing index
const BackingIndexPrefix = "IX_"

// Control decides which object types a snapshot contains
type Control interface {
	ShouldInclude(t schema.ObjectType) bool
}

// Generator attaches primary keys from the mapping model to snapshot tables
type Generator struct {
	resolver *Resolver
	source   mapping.Source
}

// NewGenerator creates a new primary key generator
func NewGenerator(resolver *Resolver, source mapping.Source) *Generator {
	return &Generator{resolver: resolver, source: source}
}

// AddTo adds the primary key and its backing index to the table obj
func (g *Generator) AddTo(ctx context.Context, obj schema.Object, control Control) error {
	if control != nil && !control.ShouldInclude(schema.TypePrimaryKey) {
		return nil
	}

	table, ok := obj.(*schema.Table)
	if !ok || table == nil {
		return fmt.Errorf("%w: primary keys can only be added to tables, got %T", ErrInvalidExample, obj)
	}

	mapped, err := g.source.LookupTable(ctx, table.Name)
	if err != nil {
		return fmt.Errorf("failed to look up table %s: %w", table.Name, err)
	}
	if mapped.PrimaryKey == nil {
		return nil
	}
	if err := validate(mapped); err != nil {
		return err
	}

	res := g.resolver.Resolve(mapped.Name, mapped.PrimaryKey.Name)
	attach(table, res.Name, mapped.PrimaryKey.Columns)

	g.resolver.log.Info("found primary key", "table", table.Name, "name", res.Name, "outcome", string(res.Outcome))
	return nil
}

func validate(mapped *mapping.Table) error {
	if len(mapped.PrimaryKey.Columns) == 0 {
		return fmt.Errorf("%w: primary key of table %s has no columns", ErrInvalidExample, mapped.Name)
	}
	for i, c := range mapped.PrimaryKey.Columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: primary key of table %s has a blank column at position %d", ErrInvalidExample, mapped.Name, i)
		}
	}
	return nil
}

// attach builds the primary key and its backing index and links them into table
func attach(table *schema.Table, name string, columnNames []string) *schema.PrimaryKey {
	pk := &schema.PrimaryKey{Name: name, Table: table}
	for _, c := range columnNames {
		col := table.Column(c)
		if col == nil {
			col = table.AddColumn(c)
		}
		pk.Columns = append(pk.Columns, col)
	}

	index := &schema.Index{
		Name:    BackingIndexPrefix + pk.Name,
		Table:   table,
		Columns: pk.Columns,
		Unique:  true,
	}
	pk.BackingIndex = index

	table.PrimaryKey = pk
	table.Indexes = append(table.Indexes, index)
	return pk
}
