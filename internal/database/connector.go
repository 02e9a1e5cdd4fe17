package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	sq "github.com/Masterminds/squirrel"

	"github.com/koba/snapdiff/internal/mapping"
)

// Config holds database connection configuration
type Config struct {
	Type     string // "mysql" or "postgres"
	Host     string
	Port     string
	Database string
	Schema   string // PostgreSQL only
	User     string
	Password string
}

// Database is a mapping model read from a live database catalog
type Database interface {
	mapping.Source
	Connect(ctx context.Context) error
	Close() error
}

// NewDatabase creates a new database connection based on type
func NewDatabase(config Config) (Database, error) {
	switch normalizeType(config.Type) {
	case "mysql":
		return NewMySQL(config), nil
	case "postgres":
		return NewPostgres(config), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

func normalizeType(dbType string) string {
	switch dbType {
	case "mysql", "MySQL":
		return "mysql"
	case "postgres", "Postgres", "PostgreSQL":
		return "postgres"
	}
	return dbType
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() (Config, error) {
	dbType := normalizeType(os.Getenv("DB_TYPE"))
	if dbType == "" {
		return Config{}, fmt.Errorf("DB_TYPE environment variable is required")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}

	database := os.Getenv("DB_NAME")
	if database == "" {
		return Config{}, fmt.Errorf("DB_NAME environment variable is required")
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		switch dbType {
		case "mysql":
			port = "3306"
		case "postgres":
			port = "5432"
		}
	}

	schemaName := os.Getenv("DB_SCHEMA")
	if schemaName == "" && dbType == "postgres" {
		schemaName = "public"
	}

	return Config{
		Type:     dbType,
		Host:     host,
		Port:     port,
		Database: database,
		Schema:   schemaName,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
	}, nil
}

func queryStrings(ctx context.Context, db *sql.DB, b sq.SelectBuilder) ([]string, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// queryPrimaryKey reads (constraint name, column name) rows in key order
func queryPrimaryKey(ctx context.Context, db *sql.DB, b sq.SelectBuilder) (*mapping.PrimaryKey, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk *mapping.PrimaryKey
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, fmt.Errorf("failed to scan primary key column: %w", err)
		}
		if pk == nil {
			pk = &mapping.PrimaryKey{Name: name}
		}
		pk.Columns = append(pk.Columns, column)
	}

	return pk, rows.Err()
}
