package generator

import (
	"fmt"
	"strings"

	"github.com/koba/snapdiff/internal/diff"
	"github.com/koba/snapdiff/internal/schema"
)

// DDLGenerator generates DDL statements
type DDLGenerator struct {
	dbType string
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator(dbType string) *DDLGenerator {
	return &DDLGenerator{dbType: dbType}
}

func (g *DDLGenerator) isPostgres() bool {
	return g.dbType == "postgres" || g.dbType == "Postgres" || g.dbType == "PostgreSQL"
}

// Generate generates DDL for a table diff
func (g *DDLGenerator) Generate(tableDiff *diff.TableDiff) string {
	var statements []string
	table := tableDiff.TableName
	pk := tableDiff.PrimaryKey

	// Drop indexes first
	for _, idxChange := range tableDiff.IndexChanges {
		if idxChange.Action == diff.ActionDrop || idxChange.Action == diff.ActionModify {
			statements = append(statements, g.generateDropIndex(table, idxChange.OldIndex.Name))
		}
	}

	if pk != nil {
		switch pk.Action {
		case diff.ActionDrop, diff.ActionModify:
			statements = append(statements, g.generateDropPrimaryKey(table, pk.Old))
		case diff.ActionRename:
			if stmt := g.generateRenamePrimaryKey(table, pk.Old, pk.New); stmt != "" {
				statements = append(statements, stmt)
			}
		}

		if pk.Action == diff.ActionAdd || pk.Action == diff.ActionModify {
			statements = append(statements, g.generateAddPrimaryKey(table, pk.New))
		}
	}

	// Add indexes
	for _, idxChange := range tableDiff.IndexChanges {
		if idxChange.Action == diff.ActionAdd || idxChange.Action == diff.ActionModify {
			statements = append(statements, g.generateCreateIndex(table, idxChange.NewIndex))
		}
	}

	return strings.Join(statements, "\n")
}

func (g *DDLGenerator) generateAddPrimaryKey(tableName string, pk *schema.PrimaryKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
		g.quoteIdentifier(tableName),
		g.quoteIdentifier(pk.Name),
		strings.Join(g.quoteIdentifiers(schema.ColumnNames(pk.Columns)), ", "),
	)
}

func (g *DDLGenerator) generateDropPrimaryKey(tableName string, pk *schema.PrimaryKey) string {
	if g.isPostgres() {
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;",
			g.quoteIdentifier(tableName),
			g.quoteIdentifier(pk.Name),
		)
	}
	// MySQL
	return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", g.quoteIdentifier(tableName))
}

func (g *DDLGenerator) generateRenamePrimaryKey(tableName string, old, new *schema.PrimaryKey) string {
	if g.isPostgres() {
		return fmt.Sprintf("ALTER TABLE %s RENAME CONSTRAINT %s TO %s;",
			g.quoteIdentifier(tableName),
			g.quoteIdentifier(old.Name),
			g.quoteIdentifier(new.Name),
		)
	}
	// MySQL names every primary key PRIMARY
	return ""
}

func (g *DDLGenerator) generateCreateIndex(tableName string, idx *schema.Index) string {
	indexType := ""
	if idx.Unique {
		indexType = "UNIQUE "
	}

	columns := strings.Join(g.quoteIdentifiers(schema.ColumnNames(idx.Columns)), ", ")
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
		indexType,
		g.quoteIdentifier(idx.Name),
		g.quoteIdentifier(tableName),
		columns,
	)
}

func (g *DDLGenerator) generateDropIndex(tableName, indexName string) string {
	if g.isPostgres() {
		return fmt.Sprintf("DROP INDEX %s;", g.quoteIdentifier(indexName))
	}
	// MySQL
	return fmt.Sprintf("DROP INDEX %s ON %s;",
		g.quoteIdentifier(indexName),
		g.quoteIdentifier(tableName),
	)
}

func (g *DDLGenerator) quoteIdentifier(name string) string {
	if g.isPostgres() {
		return fmt.Sprintf("\"%s\"", strings.ReplaceAll(name, `"`, `""`))
	}
	// MySQL
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

func (g *DDLGenerator) quoteIdentifiers(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = g.quoteIdentifier(name)
	}
	return quoted
}
