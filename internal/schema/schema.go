package schema

// ObjectType identifies the kind of a snapshot object
type ObjectType string

const (
	TypeTable      ObjectType = "table"
	TypeColumn     ObjectType = "column"
	TypePrimaryKey ObjectType = "primary-key"
	TypeIndex      ObjectType = "index"
)

// Object is implemented by every node of the snapshot graph
type Object interface {
	ObjectType() ObjectType
	ObjectName() string
}

// Column represents a table column
type Column struct {
	Name     string
	Relation *Table
}

// Index represents a table index
type Index struct {
	Name    string
	Table   *Table
	Columns []*Column
	Unique  bool
}

// PrimaryKey represents a primary key constraint.
// BackingIndex is the unique index enforcing it and shares Columns with it.
type PrimaryKey struct {
	Name         string
	Table        *Table
	Columns      []*Column
	BackingIndex *Index
}

// Table represents a table in a snapshot
type Table struct {
	Name       string
	Columns    []*Column
	PrimaryKey *PrimaryKey
	Indexes    []*Index
}

// NewTable creates a table owning the given columns
func NewTable(name string, columnNames ...string) *Table {
	t := &Table{Name: name}
	for _, c := range columnNames {
		t.AddColumn(c)
	}
	return t
}

// AddColumn appends a column owned by the table and returns it
func (t *Table) AddColumn(name string) *Column {
	col := &Column{Name: name, Relation: t}
	t.Columns = append(t.Columns, col)
	return col
}

// Column returns the column with the given name, or nil
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index returns the index with the given name, or nil
func (t *Table) Index(name string) *Index {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// ColumnNames returns the names of the given columns in order
func ColumnNames(columns []*Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) ObjectType() ObjectType       { return TypeTable }
func (t *Table) ObjectName() string           { return t.Name }
func (c *Column) ObjectType() ObjectType      { return TypeColumn }
func (c *Column) ObjectName() string          { return c.Name }
func (pk *PrimaryKey) ObjectType() ObjectType { return TypePrimaryKey }
func (pk *PrimaryKey) ObjectName() string     { return pk.Name }
func (idx *Index) ObjectType() ObjectType     { return TypeIndex }
func (idx *Index) ObjectName() string         { return idx.Name }
