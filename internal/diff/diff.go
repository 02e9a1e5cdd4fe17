package diff

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/koba/snapdiff/internal/schema"
	"github.com/koba/snapdiff/internal/snapshot"
)

// Result holds the complete comparison result
type Result struct {
	Tables map[string]*TableDiff
}

// TableNames returns the names of changed tables in sorted order
func (r *Result) TableNames() []string {
	names := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compare compares the primary keys and indexes of two snapshots
func Compare(snap1, snap2 *snapshot.Snapshot) *Result {
	result := &Result{Tables: make(map[string]*TableDiff)}

	// Find all unique table names
	tableNames := make(map[string]bool)
	for name := range snap1.Tables {
		tableNames[name] = true
	}
	for name := range snap2.Tables {
		tableNames[name] = true
	}

	for tableName := range tableNames {
		if d := compareTables(tableName, snap1.Tables[tableName], snap2.Tables[tableName]); d != nil {
			result.Tables[tableName] = d
		}
	}

	return result
}

// Display prints the diff result in a human-readable format
func Display(w io.Writer, result *Result) {
	if len(result.Tables) == 0 {
		fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, tableName := range result.TableNames() {
		displayTableDiff(w, result.Tables[tableName])
	}
}

func displayTableDiff(w io.Writer, d *TableDiff) {
	fmt.Fprintf(w, "Table: %s\n", d.TableName)

	if pk := d.PrimaryKey; pk != nil {
		switch pk.Action {
		case ActionAdd:
			fmt.Fprintf(w, "  Primary key: ADD %s (%s)\n", pk.New.Name, columnList(pk.New.Columns))
		case ActionDrop:
			fmt.Fprintf(w, "  Primary key: DROP %s\n", pk.Old.Name)
		case ActionRename:
			fmt.Fprintf(w, "  Primary key: RENAME %s -> %s\n", pk.Old.Name, pk.New.Name)
		case ActionModify:
			fmt.Fprintf(w, "  Primary key: MODIFY %s -> %s (%s)\n", pk.Old.Name, pk.New.Name, columnChanges(pk.Old.Columns, pk.New.Columns))
		}
	}

	if len(d.IndexChanges) > 0 {
		fmt.Fprintf(w, "  Index changes:\n")
		for _, change := range d.IndexChanges {
			fmt.Fprintf(w, "    - %s: %s\n", change.IndexName, change.Action)
		}
	}
	fmt.Fprintln(w)
}

func columnList(columns []*schema.Column) string {
	return strings.Join(schema.ColumnNames(columns), ", ")
}

// columnChanges summarises how two ordered column lists differ
func columnChanges(old, new []*schema.Column) string {
	removed, added := funk.DifferenceString(schema.ColumnNames(old), schema.ColumnNames(new))
	if len(removed) == 0 && len(added) == 0 {
		return "columns reordered"
	}

	var parts []string
	if len(added) > 0 {
		parts = append(parts, "+"+strings.Join(added, ",+"))
	}
	if len(removed) > 0 {
		parts = append(parts, "-"+strings.Join(removed, ",-"))
	}
	return strings.Join(parts, " ")
}
