package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

func TestKeysAreDeterministic(t *testing.T) {
	assert.Equal(t, ListKey(9, 9, "Char"), ListKey(9, 9, " char "))
	assert.Equal(t, TypeKey("Fire"), TypeKey("fire"))
	assert.Equal(t, "list:offset=0:limit=9:search=", ListKey(0, 9, ""))
	assert.Equal(t, "type:name=fire", TypeKey("FIRE"))
	assert.Equal(t, "evolution:species=eevee", EvolutionKey("Eevee"))
}

func TestKeysDoNotCollideAcrossKinds(t *testing.T) {
	keys := []string{
		ListKey(0, 9, "fire"),
		ListKey(0, 9, ""),
		ListKey(9, 0, ""),
		TypeKey("fire"),
		AbilityKey("fire"),
		DetailKey("fire"),
		EvolutionKey("fire"),
		ListKey(0, 9, "x:limit=9"),
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestDetailKeyEscapesURL(t *testing.T) {
	k := DetailKey("https://pokeapi.co/api/v2/pokemon/25/")
	assert.Equal(t, KindDetail, Kind(k))
	assert.NotContains(t, k[len("detail:url="):], ":")
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindList, Kind(ListKey(0, 1, "")))
	assert.Equal(t, KindAbility, Kind(AbilityKey("blaze")))
	assert.Equal(t, "plain", Kind("plain"))
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}
	in := models.ListItemRef{Name: "bulbasaur", URL: "https://pokeapi.co/api/v2/pokemon/1/"}

	require.NoError(t, SetJSON(ctx, c, "k", in, time.Hour))

	var out models.ListItemRef
	require.True(t, GetJSON(ctx, c, "k", &out))
	assert.Equal(t, in, out)

	c["bad"] = []byte("{not json")
	assert.False(t, GetJSON(ctx, c, "bad", &out))
	assert.False(t, GetJSON(ctx, c, "absent", &out))
}

func TestNopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Nop
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestInstrumentedPassesThrough(t *testing.T) {
	ctx := context.Background()
	c := Instrument(mapCache{})
	require.NoError(t, c.Set(ctx, TypeKey("fire"), []byte("[]"), time.Hour))

	v, ok := c.Get(ctx, TypeKey("fire"))
	assert.True(t, ok)
	assert.Equal(t, "[]", string(v))

	_, ok = c.Get(ctx, TypeKey("water"))
	assert.False(t, ok)
}
