package snapshot

import "database/sql"

const (
	// SQLite schema for storing snapshots
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	createTableSchemasTable = `
		CREATE TABLE IF NOT EXISTS table_schemas (
			table_name TEXT PRIMARY KEY,
			schema_json TEXT NOT NULL
		);
	`

	createFailuresTable = `
		CREATE TABLE IF NOT EXISTS snapshot_failures (
			table_name TEXT PRIMARY KEY,
			error TEXT NOT NULL
		);
	`
)

// initializeSchema creates the necessary tables in the SQLite snapshot database
func initializeSchema(db *sql.DB) error {
	schemas := []string{
		createMetadataTable,
		createTableSchemasTable,
		createFailuresTable,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return err
		}
	}

	return nil
}
