package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/koba/snapdiff/internal/schema"
)

// tableRecord is the stored form of a table; columns are referenced by name
type tableRecord struct {
	Name       string            `json:"name"`
	Columns    []string          `json:"columns"`
	PrimaryKey *primaryKeyRecord `json:"primary_key,omitempty"`
	Indexes    []indexRecord     `json:"indexes"`
}

type primaryKeyRecord struct {
	Name         string   `json:"name"`
	Columns      []string `json:"columns"`
	BackingIndex string   `json:"backing_index,omitempty"`
}

type indexRecord struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

func newTableRecord(t *schema.Table) tableRecord {
	rec := tableRecord{
		Name:    t.Name,
		Columns: schema.ColumnNames(t.Columns),
		Indexes: make([]indexRecord, 0, len(t.Indexes)),
	}
	if pk := t.PrimaryKey; pk != nil {
		rec.PrimaryKey = &primaryKeyRecord{Name: pk.Name, Columns: schema.ColumnNames(pk.Columns)}
		if pk.BackingIndex != nil {
			rec.PrimaryKey.BackingIndex = pk.BackingIndex.Name
		}
	}
	for _, idx := range t.Indexes {
		rec.Indexes = append(rec.Indexes, indexRecord{
			Name:    idx.Name,
			Columns: schema.ColumnNames(idx.Columns),
			Unique:  idx.Unique,
		})
	}
	return rec
}

// table rebuilds the object graph, sharing column instances between the
// table, its primary key and its indexes.
func (rec tableRecord) table() (*schema.Table, error) {
	t := schema.NewTable(rec.Name, rec.Columns...)

	resolve := func(names []string) []*schema.Column {
		cols := make([]*schema.Column, len(names))
		for i, n := range names {
			col := t.Column(n)
			if col == nil {
				col = t.AddColumn(n)
			}
			cols[i] = col
		}
		return cols
	}

	if rec.PrimaryKey != nil {
		t.PrimaryKey = &schema.PrimaryKey{
			Name:    rec.PrimaryKey.Name,
			Table:   t,
			Columns: resolve(rec.PrimaryKey.Columns),
		}
	}

	for _, ir := range rec.Indexes {
		idx := &schema.Index{Name: ir.Name, Table: t, Unique: ir.Unique}
		if pk := t.PrimaryKey; pk != nil && rec.PrimaryKey.BackingIndex == ir.Name {
			idx.Columns = pk.Columns
			pk.BackingIndex = idx
		} else {
			idx.Columns = resolve(ir.Columns)
		}
		t.Indexes = append(t.Indexes, idx)
	}

	if pk := t.PrimaryKey; pk != nil && rec.PrimaryKey.BackingIndex != "" && pk.BackingIndex == nil {
		return nil, fmt.Errorf("backing index %s of table %s is missing", rec.PrimaryKey.BackingIndex, rec.Name)
	}

	return t, nil
}

// Save writes the snapshot to a new SQLite file at outputPath
func Save(snap *Snapshot, outputPath string) error {
	// Ensure output directory exists
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Remove existing snapshot file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot: %w", err)
		}
	}

	snapshotDB, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot database: %w", err)
	}
	defer snapshotDB.Close()

	if err := initializeSchema(snapshotDB); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	tx, err := snapshotDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range snap.Metadata {
		if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	for _, name := range snap.TableNames() {
		schemaJSON, err := json.Marshal(newTableRecord(snap.Tables[name]))
		if err != nil {
			return fmt.Errorf("failed to marshal schema of table %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO table_schemas (table_name, schema_json) VALUES (?, ?)",
			name,
			string(schemaJSON),
		); err != nil {
			return fmt.Errorf("failed to insert schema of table %s: %w", name, err)
		}
	}

	for name, msg := range snap.Failures {
		if _, err := tx.Exec("INSERT INTO snapshot_failures (table_name, error) VALUES (?, ?)", name, msg); err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load loads a snapshot from a SQLite file
func Load(snapshotPath string) (*Snapshot, error) {
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file does not exist: %s", snapshotPath)
	}

	db, err := sql.Open("sqlite", snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	snap := New()

	if err := loadPairs(db, "SELECT key, value FROM metadata", snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	if err := loadPairs(db, "SELECT table_name, error FROM snapshot_failures", snap.Failures); err != nil {
		return nil, fmt.Errorf("failed to load failures: %w", err)
	}

	schemas := make(map[string]string)
	if err := loadPairs(db, "SELECT table_name, schema_json FROM table_schemas", schemas); err != nil {
		return nil, fmt.Errorf("failed to load table schemas: %w", err)
	}

	for name, schemaJSON := range schemas {
		var rec tableRecord
		if err := json.Unmarshal([]byte(schemaJSON), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema of table %s: %w", name, err)
		}
		table, err := rec.table()
		if err != nil {
			return nil, err
		}
		snap.Tables[name] = table
	}

	return snap, nil
}

func loadPairs(db *sql.DB, query string, into map[string]string) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		into[key] = value
	}

	return rows.Err()
}
