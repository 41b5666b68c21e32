// Package pokeapitest runs an in-process fake of the upstream Pokémon API
// for tests. It serves a fixed roster of twenty Pokémon, a few types and
// abilities, and one evolution chain, and counts requests per endpoint.
package pokeapitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Roster is the upstream list in order.
var Roster = []string{
	"bulbasaur", "ivysaur", "venusaur",
	"charmander", "charmeleon", "charizard",
	"squirtle", "wartortle", "blastoise",
	"caterpie", "metapod", "butterfree",
	"weedle", "kakuna", "beedrill",
	"pidgey", "pidgeotto", "pidgeot",
	"rattata", "raticate",
}

var types = map[string][]string{
	"grass":  {"bulbasaur", "ivysaur", "venusaur"},
	"poison": {"bulbasaur", "ivysaur", "venusaur", "weedle", "kakuna", "beedrill"},
	"fire":   {"charmander", "charmeleon", "charizard"},
	"water":  {"squirtle", "wartortle", "blastoise"},
}

var abilities = map[string][]string{
	"overgrow":    {"bulbasaur", "ivysaur", "venusaur"},
	"shield-dust": {"caterpie", "weedle"},
}

// Endpoint kinds used as keys of Hits.
const (
	List      = "list"
	Detail    = "detail"
	Type      = "type"
	Ability   = "ability"
	Species   = "species"
	Evolution = "evolution"
)

// Server is a running fake API.
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
	fail map[string]bool
}

// NewServer starts a fake API. Close it when done.
func NewServer() *Server {
	s := &Server{hits: map[string]int{}, fail: map[string]bool{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// BaseURL is the API root to hand to upstream.New.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v2"
}

// Fail makes every request to path (relative to BaseURL, without
// trailing slash, e.g. "/pokemon/ivysaur" or "/pokemon") answer 500.
func (s *Server) Fail(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[path] = true
}

// Hits returns how many requests reached the given endpoint kind.
func (s *Server) Hits(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[kind]
}

// TotalHits returns the number of requests across all endpoints.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v2"), "/")
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	kind := ""
	switch {
	case path == "/pokemon":
		kind = List
	case len(parts) == 2 && parts[0] == "pokemon":
		kind = Detail
	case len(parts) == 2 && parts[0] == "type":
		kind = Type
	case len(parts) == 2 && parts[0] == "ability":
		kind = Ability
	case len(parts) == 2 && parts[0] == "pokemon-species":
		kind = Species
	case len(parts) == 2 && parts[0] == "evolution-chain":
		kind = Evolution
	}

	s.mu.Lock()
	s.hits[kind]++
	failing := s.fail[path]
	s.mu.Unlock()

	if failing {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
		return
	}

	var body string
	ok := true
	switch kind {
	case List:
		body = s.list(r)
	case Detail:
		body, ok = detail(parts[1])
	case Type:
		body, ok = s.category(types, parts[1])
	case Ability:
		body, ok = s.category(abilities, parts[1])
	case Species:
		body, ok = s.species(parts[1])
	case Evolution:
		body, ok = evolution(parts[1])
	default:
		ok = false
	}
	if !ok {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *Server) ref(name string) string {
	return fmt.Sprintf(`{"name":%q,"url":%q}`, name, s.BaseURL()+"/pokemon/"+name+"/")
}

func (s *Server) list(r *http.Request) string {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 20
	}
	offset = min(max(offset, 0), len(Roster))
	end := min(offset+limit, len(Roster))

	refs := make([]string, 0, end-offset)
	for _, name := range Roster[offset:end] {
		refs = append(refs, s.ref(name))
	}
	next := "null"
	if end < len(Roster) {
		next = strconv.Quote(fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", s.BaseURL(), end, limit))
	}
	return fmt.Sprintf(`{"count":%d,"next":%s,"previous":null,"results":[%s]}`,
		len(Roster), next, strings.Join(refs, ","))
}

func (s *Server) category(members map[string][]string, name string) (string, bool) {
	names, ok := members[name]
	if !ok {
		return "", false
	}
	entries := make([]string, 0, len(names))
	for i, n := range names {
		entries = append(entries, fmt.Sprintf(`{"pokemon":%s,"slot":%d}`, s.ref(n), i+1))
	}
	return fmt.Sprintf(`{"name":%q,"pokemon":[%s]}`, name, strings.Join(entries, ",")), true
}

func (s *Server) species(name string) (string, bool) {
	switch name {
	case "bulbasaur", "ivysaur", "venusaur":
		return fmt.Sprintf(`{"name":%q,"evolution_chain":{"url":%q}}`, name, s.BaseURL()+"/evolution-chain/1/"), true
	case "rattata":
		return `{"name":"rattata","evolution_chain":null}`, true
	}
	return "", false
}

func evolution(id string) (string, bool) {
	if id != "1" {
		return "", false
	}
	return `{"id":1,"chain":{"species":{"name":"bulbasaur"},"evolves_to":[
		{"species":{"name":"ivysaur"},"evolves_to":[
			{"species":{"name":"venusaur"},"evolves_to":[]}]}]}}`, true
}

// SpriteURL is the sprite served for name.
func SpriteURL(name string) string {
	return "https://sprites.example/" + name + ".png"
}

func detail(name string) (string, bool) {
	if name == "missingno" {
		return `{"name":"missingno","sprites":{"front_default":null},"types":[],"abilities":[]}`, true
	}
	known := false
	for _, n := range Roster {
		known = known || n == name
	}
	if !known {
		return "", false
	}

	var typeNames []string
	for _, t := range []string{"grass", "poison", "fire", "water"} {
		for _, m := range types[t] {
			if m == name {
				typeNames = append(typeNames, fmt.Sprintf(`{"slot":%d,"type":{"name":%q}}`, len(typeNames)+1, t))
			}
		}
	}
	if len(typeNames) == 0 {
		typeNames = append(typeNames, `{"slot":1,"type":{"name":"normal"}}`)
	}
	return fmt.Sprintf(`{"name":%q,"height":7,"weight":69,"sprites":{"front_default":%q},"types":[%s],"abilities":[{"ability":{"name":"run-away"},"is_hidden":false}]}`,
		name, SpriteURL(name), strings.Join(typeNames, ",")), true
}
