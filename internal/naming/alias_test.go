package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasFor(t *testing.T) {
	legacy := Alias{MaxLength: 15, Suffix: "PK"}
	regen := Alias{MaxLength: 63}

	tests := []struct {
		name       string
		alias      Alias
		identifier string
		want       string
	}{
		{"short name keeps suffix", legacy, "orders", "ordersPK"},
		{"long name is cut", legacy, "very_long_prefixed_table_name_exceeding_limits", "very_long_prePK"},
		{"empty identifier", legacy, "", "PK"},
		{"no suffix under limit", regen, "customer_accounts", "customer_accounts"},
		{"no suffix over limit", regen, strings.Repeat("a", 70), strings.Repeat("a", 63)},
		{"double quoted", legacy, `"very_long_prefixed_table"`, `"very_long_prePK"`},
		{"bracket quoted", legacy, "[very_long_prefixed_table]", "[very_long_prePK]"},
		{"unbalanced quote is not stripped", legacy, `"very_long_prefixed_table`, `"very_long_prPK`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alias.AliasFor(tt.identifier))
		})
	}
}

func TestAliasForIsBounded(t *testing.T) {
	a := Alias{MaxLength: 15, Suffix: "PK"}
	for _, name := range []string{"a", "abcdefghijklm", "abcdefghijklmnopqrstuvwxyz", "täbelle_mit_umlauten_und_mehr"} {
		got := a.AliasFor(name)
		assert.LessOrEqual(t, Length(got), 15, name)
		assert.Equal(t, got, a.AliasFor(name), "alias must be deterministic")
	}
}

func TestAliasDistinguishesLongPrefixes(t *testing.T) {
	legacy := Alias{MaxLength: 15, Suffix: "PK"}
	regen := Alias{MaxLength: 63}

	a := "customer_account_history"
	b := "customer_account_settings"

	assert.Equal(t, legacy.AliasFor(a), legacy.AliasFor(b))
	assert.NotEqual(t, regen.AliasFor(a), regen.AliasFor(b))
}

func TestTruncateCountsCharacters(t *testing.T) {
	assert.Equal(t, "äöü", Truncate("äöüß", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, 4, Length("äöüß"))
}

func TestHashCode(t *testing.T) {
	assert.Equal(t, int32(0), HashCode(""))
	assert.Equal(t, int32(99162322), HashCode("hello"))
	assert.Equal(t, "5E918D2", HexHash("hello"))

	// overflows to the minimum int32
	assert.Equal(t, int32(-2147483648), HashCode("polygenelubricants"))
	assert.Equal(t, "80000000", HexHash("polygenelubricants"))
}

func TestNewStrategy(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		s, err := New("", 63)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := New("camel", 63)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "screaming-snake")
	})

	t.Run("screaming snake", func(t *testing.T) {
		s, err := New("screaming-snake", 63)
		require.NoError(t, err)
		assert.Equal(t, "ORDER_ITEMS_PK", s.AliasFor("order_items"))
	})

	t.Run("pkey", func(t *testing.T) {
		s, err := New("pkey", 63)
		require.NoError(t, err)
		assert.Equal(t, "orders_pkey", s.AliasFor("orders"))
		assert.Len(t, s.AliasFor(strings.Repeat("t", 80)), 63)
	})

	t.Run("prefixed", func(t *testing.T) {
		s, err := New("prefixed", 10)
		require.NoError(t, err)
		assert.Equal(t, "PK_ORDERS", s.AliasFor("orders"))
		assert.Equal(t, "PK_CUSTOME", s.AliasFor("customers"))
	})

	t.Run("func adapter", func(t *testing.T) {
		var s Strategy = StrategyFunc(func(table string) string { return "X_" + table })
		assert.Equal(t, "X_orders", s.AliasFor("orders"))
	})
}
