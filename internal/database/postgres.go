package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/koba/snapdiff/internal/mapping"
)

// Postgres reads the mapping model from a PostgreSQL catalog
type Postgres struct {
	config Config
	db     *sql.DB
	sb     sq.StatementBuilderType
}

// NewPostgres creates a new PostgreSQL database connection
func NewPostgres(config Config) *Postgres {
	if config.Schema == "" {
		config.Schema = "public"
	}
	return &Postgres{
		config: config,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Connect establishes a connection to PostgreSQL
func (p *Postgres) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.config.Host,
		p.config.Port,
		p.config.User,
		p.config.Password,
		p.config.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	p.db = db
	return nil
}

// Close closes the PostgreSQL connection
func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// ListTables retrieves all base table names in the configured schema
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	tables, err := queryStrings(ctx, p.db, p.sb.
		Select("table_name").
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": p.config.Schema, "table_type": "BASE TABLE"}).
		OrderBy("table_name"))
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

// LookupTable retrieves the columns and primary key of a table
func (p *Postgres) LookupTable(ctx context.Context, name string) (*mapping.Table, error) {
	columns, err := queryStrings(ctx, p.db, p.sb.
		Select("column_name").
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": p.config.Schema, "table_name": name}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", mapping.ErrTableNotFound, p.config.Schema, name)
	}

	pk, err := queryPrimaryKey(ctx, p.db, p.sb.
		Select("c.conname", "a.attname").
		From("pg_constraint c").
		Join("pg_class t ON t.oid = c.conrelid").
		Join("pg_namespace n ON n.oid = t.relnamespace").
		Join("LATERAL unnest(c.conkey) WITH ORDINALITY AS k(attnum, ord) ON true").
		Join("pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum").
		Where(sq.Eq{"c.contype": "p", "n.nspname": p.config.Schema, "t.relname": name}).
		OrderBy("k.ord"))
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key: %w", err)
	}

	return &mapping.Table{Name: name, Columns: columns, PrimaryKey: pk}, nil
}
