package primarykey

import (
	"github.com/hashicorp/go-hclog"

	"github.com/koba/snapdiff/internal/naming"
)

const (
	// DefaultMaxLength is the PostgreSQL identifier limit
	DefaultMaxLength = 63

	// legacyAliasLength is the length the legacy mapping library truncates
	// primary key names to.
	legacyAliasLength = 15
	pkMarker          = "PK"
)

// Outcome describes which naming rule produced a primary key name
type Outcome string

const (
	OutcomeKept          Outcome = "kept"
	OutcomeStrategy      Outcome = "strategy"
	OutcomeRegenerated   Outcome = "regenerated"
	OutcomeHashed        Outcome = "hashed"
	OutcomeKeptTruncated Outcome = "kept-truncated"
)

// Resolution is the result of resolving one primary key name
type Resolution struct {
	Table    string
	Original string
	Name     string
	Outcome  Outcome
}

// Changed reports whether the name differs from the mapping model's
func (r Resolution) Changed() bool {
	return r.Name != r.Original
}

// Config holds resolver settings
type Config struct {
	// Strategy, when set, names every primary key
	Strategy  naming.Strategy
	Logger    hclog.Logger
	MaxLength int
}

// Resolver picks the primary key name to store in a snapshot
type Resolver struct {
	strategy  naming.Strategy
	log       hclog.Logger
	maxLength int
	legacy    naming.Alias
	regen     naming.Alias
}

// NewResolver creates a new resolver
func NewResolver(config Config) *Resolver {
	if config.MaxLength <= 0 {
		config.MaxLength = DefaultMaxLength
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}
	return &Resolver{
		strategy:  config.Strategy,
		log:       config.Logger,
		maxLength: config.MaxLength,
		legacy:    LegacyAlias(),
		regen:     naming.Alias{MaxLength: config.MaxLength},
	}
}

// LegacyAlias returns the alias scheme the legacy mapping library names
// primary keys with.
func LegacyAlias() naming.Alias {
	return naming.Alias{MaxLength: legacyAliasLength, Suffix: pkMarker}
}

// MaxLength returns the identifier limit the resolver works with
func (r *Resolver) MaxLength() int {
	return r.maxLength
}

// Resolve returns the name to persist for the primary key pkName of tableName
func (r *Resolver) Resolve(tableName, pkName string) Resolution {
	res := Resolution{Table: tableName, Original: pkName, Name: pkName, Outcome: OutcomeKept}

	if r.strategy != nil {
		res.Name = r.strategy.AliasFor(tableName)
		res.Outcome = OutcomeStrategy
		r.log.Warn("changing primary key name", "table", tableName, "from", pkName, "to", res.Name)
		return res
	}

	if !r.isLegacyAlias(tableName, pkName) {
		return res
	}

	// Legacy names of tables sharing a long prefix collide.
	r.log.Warn("primary key name is probably truncated", "table", tableName, "name", pkName)

	alias := r.regen.AliasFor(tableName)
	aliasLength := naming.Length(alias)
	if aliasLength <= legacyAliasLength {
		res.Outcome = OutcomeKeptTruncated
		r.log.Warn("regenerated primary key name is not longer, keeping it", "table", tableName, "name", pkName)
		return res
	}

	if aliasLength >= r.maxLength {
		suffix := "_" + naming.HexHash(tableName) + "_" + pkMarker
		res.Name = naming.Truncate(alias, r.maxLength-naming.Length(suffix)) + suffix
		res.Outcome = OutcomeHashed
	} else {
		res.Name = alias
		res.Outcome = OutcomeRegenerated
	}

	r.log.Warn("changing primary key name", "table", tableName, "from", pkName, "to", res.Name)
	return res
}

func (r *Resolver) isLegacyAlias(tableName, pkName string) bool {
	return naming.Length(pkName) == legacyAliasLength && pkName == r.legacy.AliasFor(tableName)
}
