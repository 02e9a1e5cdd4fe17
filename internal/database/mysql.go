package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"

	"github.com/koba/snapdiff/internal/mapping"
)

// MySQL reads the mapping model from a MySQL catalog
type MySQL struct {
	config Config
	db     *sql.DB
	sb     sq.StatementBuilderType
}

// NewMySQL creates a new MySQL database connection
func NewMySQL(config Config) *MySQL {
	return &MySQL{
		config: config,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// Connect establishes a connection to MySQL
func (m *MySQL) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		m.config.User,
		m.config.Password,
		m.config.Host,
		m.config.Port,
		m.config.Database,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m.db = db
	return nil
}

// Close closes the MySQL connection
func (m *MySQL) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// ListTables retrieves all base table names in the database
func (m *MySQL) ListTables(ctx context.Context) ([]string, error) {
	tables, err := queryStrings(ctx, m.db, m.sb.
		Select("TABLE_NAME").
		From("information_schema.TABLES").
		Where(sq.Eq{"TABLE_SCHEMA": m.config.Database, "TABLE_TYPE": "BASE TABLE"}).
		OrderBy("TABLE_NAME"))
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

// LookupTable retrieves the columns and primary key of a table
func (m *MySQL) LookupTable(ctx context.Context, name string) (*mapping.Table, error) {
	columns, err := queryStrings(ctx, m.db, m.sb.
		Select("COLUMN_NAME").
		From("information_schema.COLUMNS").
		Where(sq.Eq{"TABLE_SCHEMA": m.config.Database, "TABLE_NAME": name}).
		OrderBy("ORDINAL_POSITION"))
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", mapping.ErrTableNotFound, m.config.Database, name)
	}

	// MySQL always names the primary key PRIMARY
	pk, err := queryPrimaryKey(ctx, m.db, m.sb.
		Select("CONSTRAINT_NAME", "COLUMN_NAME").
		From("information_schema.KEY_COLUMN_USAGE").
		Where(sq.Eq{"CONSTRAINT_NAME": "PRIMARY", "TABLE_NAME": name, "TABLE_SCHEMA": m.config.Database}).
		OrderBy("ORDINAL_POSITION"))
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key: %w", err)
	}

	return &mapping.Table{Name: name, Columns: columns, PrimaryKey: pk}, nil
}
