package diff

import (
	"sort"

	"github.com/koba/snapdiff/internal/schema"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
	ActionRename Action = "RENAME"
)

// TableDiff represents primary key and index differences for a table
type TableDiff struct {
	TableName    string
	PrimaryKey   *PrimaryKeyChange
	IndexChanges []IndexChange
}

// PrimaryKeyChange represents a change to a table's primary key
type PrimaryKeyChange struct {
	Action Action
	Old    *schema.PrimaryKey
	New    *schema.PrimaryKey
}

// IndexChange represents a change to an index
type IndexChange struct {
	IndexName string
	Action    Action
	OldIndex  *schema.Index
	NewIndex  *schema.Index
}

// compareTables compares two versions of a table; either may be nil
func compareTables(name string, old, new *schema.Table) *TableDiff {
	diff := &TableDiff{TableName: name}

	var oldPK, newPK *schema.PrimaryKey
	if old != nil {
		oldPK = old.PrimaryKey
	}
	if new != nil {
		newPK = new.PrimaryKey
	}
	diff.PrimaryKey = comparePrimaryKeys(oldPK, newPK)
	diff.IndexChanges = compareIndexes(indexesOf(old), indexesOf(new))

	// Return nil if no changes
	if diff.PrimaryKey == nil && len(diff.IndexChanges) == 0 {
		return nil
	}

	return diff
}

func comparePrimaryKeys(old, new *schema.PrimaryKey) *PrimaryKeyChange {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		return &PrimaryKeyChange{Action: ActionAdd, New: new}
	case new == nil:
		return &PrimaryKeyChange{Action: ActionDrop, Old: old}
	case !sameColumns(old.Columns, new.Columns):
		return &PrimaryKeyChange{Action: ActionModify, Old: old, New: new}
	case old.Name != new.Name:
		return &PrimaryKeyChange{Action: ActionRename, Old: old, New: new}
	}
	return nil
}

func indexesOf(t *schema.Table) map[string]*schema.Index {
	indexes := make(map[string]*schema.Index)
	if t == nil {
		return indexes
	}
	for _, idx := range t.Indexes {
		indexes[idx.Name] = idx
	}
	return indexes
}

func compareIndexes(oldIndexes, newIndexes map[string]*schema.Index) []IndexChange {
	var changes []IndexChange

	for name, newIdx := range newIndexes {
		if oldIdx, exists := oldIndexes[name]; exists {
			if !indexesEqual(oldIdx, newIdx) {
				changes = append(changes, IndexChange{
					IndexName: name,
					Action:    ActionModify,
					OldIndex:  oldIdx,
					NewIndex:  newIdx,
				})
			}
		} else {
			changes = append(changes, IndexChange{
				IndexName: name,
				Action:    ActionAdd,
				NewIndex:  newIdx,
			})
		}
	}

	for name, oldIdx := range oldIndexes {
		if _, exists := newIndexes[name]; !exists {
			changes = append(changes, IndexChange{
				IndexName: name,
				Action:    ActionDrop,
				OldIndex:  oldIdx,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].IndexName < changes[j].IndexName })
	return changes
}

func indexesEqual(a, b *schema.Index) bool {
	return a.Name == b.Name && a.Unique == b.Unique && sameColumns(a.Columns, b.Columns)
}

func sameColumns(a, b []*schema.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}
