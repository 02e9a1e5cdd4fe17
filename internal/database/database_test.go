package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/snapdiff/internal/mapping"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p := NewPostgres(Config{Type: "postgres", Database: "shop"})
	p.db = db
	return p, mock
}

func newMockMySQL(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewMySQL(Config{Type: "mysql", Database: "shop"})
	m.db = db
	return m, mock
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()

	t.Run("ListTables", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT table_name FROM information_schema.tables WHERE .* ORDER BY table_name`).
			WithArgs("public", "BASE TABLE").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("customers").AddRow("orders"))

		tables, err := p.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"customers", "orders"}, tables)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LookupTable", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
			WithArgs("orders", "public").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("tenant_id").AddRow("total"))
		mock.ExpectQuery(`SELECT c.conname, a.attname FROM pg_constraint c .* ORDER BY k.ord`).
			WithArgs("p", "public", "orders").
			WillReturnRows(sqlmock.NewRows([]string{"conname", "attname"}).
				AddRow("orders_pkey", "tenant_id").
				AddRow("orders_pkey", "id"))

		table, err := p.LookupTable(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, "orders", table.Name)
		assert.Equal(t, []string{"id", "tenant_id", "total"}, table.Columns)
		require.NotNil(t, table.PrimaryKey)
		assert.Equal(t, "orders_pkey", table.PrimaryKey.Name)
		assert.Equal(t, []string{"tenant_id", "id"}, table.PrimaryKey.Columns)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LookupTable without primary key", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("message"))
		mock.ExpectQuery(`SELECT c.conname, a.attname FROM pg_constraint c`).
			WillReturnRows(sqlmock.NewRows([]string{"conname", "attname"}))

		table, err := p.LookupTable(ctx, "audit_log")
		require.NoError(t, err)
		assert.Nil(t, table.PrimaryKey)
	})

	t.Run("LookupTable unknown table", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

		_, err := p.LookupTable(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, mapping.ErrTableNotFound))
	})

	t.Run("query failure", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		cause := errors.New("connection refused")
		mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).WillReturnError(cause)

		_, err := p.LookupTable(ctx, "orders")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, mapping.ErrTableNotFound))
	})
}

func TestMySQL(t *testing.T) {
	ctx := context.Background()

	t.Run("ListTables", func(t *testing.T) {
		m, mock := newMockMySQL(t)
		mock.ExpectQuery(`SELECT TABLE_NAME FROM information_schema.TABLES WHERE .* ORDER BY TABLE_NAME`).
			WithArgs("shop", "BASE TABLE").
			WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("orders"))

		tables, err := m.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders"}, tables)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LookupTable", func(t *testing.T) {
		m, mock := newMockMySQL(t)
		mock.ExpectQuery(`SELECT COLUMN_NAME FROM information_schema.COLUMNS`).
			WithArgs("orders", "shop").
			WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id").AddRow("total"))
		mock.ExpectQuery(`SELECT CONSTRAINT_NAME, COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE`).
			WithArgs("PRIMARY", "orders", "shop").
			WillReturnRows(sqlmock.NewRows([]string{"CONSTRAINT_NAME", "COLUMN_NAME"}).AddRow("PRIMARY", "id"))

		table, err := m.LookupTable(ctx, "orders")
		require.NoError(t, err)
		require.NotNil(t, table.PrimaryKey)
		assert.Equal(t, "PRIMARY", table.PrimaryKey.Name)
		assert.Equal(t, []string{"id"}, table.PrimaryKey.Columns)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LookupTable unknown table", func(t *testing.T) {
		m, mock := newMockMySQL(t)
		mock.ExpectQuery(`SELECT COLUMN_NAME FROM information_schema.COLUMNS`).
			WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}))

		_, err := m.LookupTable(ctx, "missing")
		assert.True(t, errors.Is(err, mapping.ErrTableNotFound))
	})
}

func TestNewDatabase(t *testing.T) {
	for _, typ := range []string{"mysql", "MySQL"} {
		db, err := NewDatabase(Config{Type: typ})
		require.NoError(t, err)
		assert.IsType(t, &MySQL{}, db)
	}
	for _, typ := range []string{"postgres", "Postgres", "PostgreSQL"} {
		db, err := NewDatabase(Config{Type: typ})
		require.NoError(t, err)
		assert.IsType(t, &Postgres{}, db)
	}

	_, err := NewDatabase(Config{Type: "oracle"})
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("postgres defaults", func(t *testing.T) {
		t.Setenv("DB_TYPE", "PostgreSQL")
		t.Setenv("DB_NAME", "shop")
		t.Setenv("DB_HOST", "")
		t.Setenv("DB_PORT", "")
		t.Setenv("DB_SCHEMA", "")

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, Config{Type: "postgres", Host: "localhost", Port: "5432", Database: "shop", Schema: "public"}, withoutCredentials(cfg))
	})

	t.Run("mysql defaults", func(t *testing.T) {
		t.Setenv("DB_TYPE", "mysql")
		t.Setenv("DB_NAME", "shop")
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "")
		t.Setenv("DB_SCHEMA", "")

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, Config{Type: "mysql", Host: "db.internal", Port: "3306", Database: "shop"}, withoutCredentials(cfg))
	})

	t.Run("missing type", func(t *testing.T) {
		t.Setenv("DB_TYPE", "")
		_, err := LoadConfigFromEnv()
		assert.EqualError(t, err, "DB_TYPE environment variable is required")
	})

	t.Run("missing name", func(t *testing.T) {
		t.Setenv("DB_TYPE", "mysql")
		t.Setenv("DB_NAME", "")
		_, err := LoadConfigFromEnv()
		assert.EqualError(t, err, "DB_NAME environment variable is required")
	})
}

func withoutCredentials(cfg Config) Config {
	cfg.User = ""
	cfg.Password = ""
	return cfg
}
