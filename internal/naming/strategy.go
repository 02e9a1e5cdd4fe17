package naming

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// Strategy maps a table name to a primary key name
type Strategy interface {
	AliasFor(tableName string) string
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(tableName string) string

func (f StrategyFunc) AliasFor(tableName string) string { return f(tableName) }

var builtins = map[string]func(maxLength int) Strategy{
	// ORDER_ITEMS_PK
	"screaming-snake": func(maxLength int) Strategy {
		return suffixed(maxLength, "_PK", strcase.ToScreamingSnake)
	},
	// order_items_pkey
	"pkey": func(maxLength int) Strategy {
		return suffixed(maxLength, "_pkey", func(s string) string { return s })
	},
	"prefixed": func(maxLength int) Strategy {
		return StrategyFunc(func(tableName string) string {
			return Truncate("PK_"+strings.ToUpper(tableName), maxLength)
		})
	},
}

func suffixed(maxLength int, suffix string, transform func(string) string) Strategy {
	a := Alias{MaxLength: maxLength, Suffix: suffix}
	return StrategyFunc(func(tableName string) string {
		return a.AliasFor(transform(tableName))
	})
}

// New returns the built-in strategy with the given name, bounded by maxLength.
// An empty name yields a nil Strategy.
func New(name string, maxLength int) (Strategy, error) {
	if name == "" {
		return nil, nil
	}
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown naming strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return build(maxLength), nil
}

// Names lists the built-in strategies
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
