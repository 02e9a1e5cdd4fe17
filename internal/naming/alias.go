package naming

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	openQuotes  = "`\"["
	closeQuotes = "`\"]"
)

// Alias derives a short identifier from a longer one. The identifier is cut
// to MaxLength minus the suffix length and the suffix is appended. Quoted
// identifiers are cut inside their quotes.
type Alias struct {
	MaxLength int
	Suffix    string
}

// AliasFor returns the alias of identifier
func (a Alias) AliasFor(identifier string) string {
	if identifier == "" {
		return a.Suffix
	}

	if q := strings.IndexByte(openQuotes, identifier[0]); q >= 0 && len(identifier) > 1 &&
		identifier[len(identifier)-1] == closeQuotes[q] {
		unquoted := identifier[1 : len(identifier)-1]
		return string(openQuotes[q]) + a.cut(unquoted) + string(closeQuotes[q])
	}

	return a.cut(identifier)
}

func (a Alias) cut(s string) string {
	limit := a.MaxLength - Length(a.Suffix)
	if limit < 0 {
		limit = 0
	}
	return Truncate(s, limit) + a.Suffix
}

// Length returns the number of characters in s
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns at most n characters of s
func Truncate(s string, n int) string {
	if Length(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// HashCode returns the 31-polynomial hash of s over its UTF-16 code units.
// Names produced by earlier releases of the legacy mapping library embed this
// value, so it must not change.
func HashCode(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

// HexHash returns HashCode(s) as upper-case unsigned hexadecimal
func HexHash(s string) string {
	return fmt.Sprintf("%X", uint32(HashCode(s)))
}
