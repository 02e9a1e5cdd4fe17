package snapshot

import (
	"fmt"

	"github.com/koba/snapdiff/internal/schema"
)

// Control selects the object types a snapshot contains
type Control struct {
	exclude map[schema.ObjectType]bool
}

// NewControl includes every object type except the excluded ones
func NewControl(exclude ...schema.ObjectType) Control {
	c := Control{exclude: make(map[schema.ObjectType]bool)}
	for _, t := range exclude {
		c.exclude[t] = true
	}
	return c
}

// ShouldInclude reports whether objects of type t belong in the snapshot
func (c Control) ShouldInclude(t schema.ObjectType) bool {
	return !c.exclude[t]
}

// ParseObjectType parses an object type name such as "primary-key"
func ParseObjectType(s string) (schema.ObjectType, error) {
	switch t := schema.ObjectType(s); t {
	case schema.TypeTable, schema.TypeColumn, schema.TypePrimaryKey, schema.TypeIndex:
		return t, nil
	}
	return "", fmt.Errorf("unknown object type: %s", s)
}

// ParseControl builds a Control from object type names
func ParseControl(exclude []string) (Control, error) {
	types := make([]schema.ObjectType, 0, len(exclude))
	for _, s := range exclude {
		t, err := ParseObjectType(s)
		if err != nil {
			return Control{}, err
		}
		types = append(types, t)
	}
	return NewControl(types...), nil
}
