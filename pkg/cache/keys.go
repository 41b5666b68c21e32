package cache

import (
	"net/url"
	"strconv"
	"strings"
)

// Key namespaces. Each request kind owns exactly one.
const (
	KindList      = "list"
	KindType      = "type"
	KindAbility   = "ability"
	KindDetail    = "detail"
	KindEvolution = "evolution"
)

// Short TTL keys (list pages, category members) and long TTL keys (details,
// evolution chains) are told apart by namespace only; the TTL is chosen by
// the caller.

// ListKey identifies a list window, optionally narrowed by a search term.
func ListKey(offset, limit int, search string) string {
	return compose(KindList,
		"offset", strconv.Itoa(offset),
		"limit", strconv.Itoa(limit),
		"search", normalizeName(search),
	)
}

// TypeKey identifies the member list of a type.
func TypeKey(name string) string {
	return compose(KindType, "name", normalizeName(name))
}

// AbilityKey identifies the member list of an ability.
func AbilityKey(name string) string {
	return compose(KindAbility, "name", normalizeName(name))
}

// DetailKey identifies a normalized Pokémon detail by its full detail URL.
func DetailKey(detailURL string) string {
	return compose(KindDetail, "url", detailURL)
}

// EvolutionKey identifies the normalized evolution tree of a species.
func EvolutionKey(species string) string {
	return compose(KindEvolution, "species", normalizeName(species))
}

// Kind returns the namespace of key.
func Kind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

// compose joins kind and escaped key/value pairs. Values are query-escaped
// so they can never contain the ':' or '=' separators.
func compose(kind string, pairs ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteByte(':')
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pairs[i+1]))
	}
	return b.String()
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
