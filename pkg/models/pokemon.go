package models

// ListItemRef is a lightweight reference to a Pokémon. URL is the canonical
// detail-fetch address and doubles as the item's cache identity.
type ListItemRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPage is one page of the upstream list endpoint. Count is the total
// across all pages, not the page size.
type ListPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []ListItemRef `json:"results"`
}

// PokemonDetail holds the normalized per-Pokémon attributes. Height and
// weight are passed through in upstream units (decimeters, hectograms).
type PokemonDetail struct {
	Sprite    *string  `json:"sprite"`
	Types     []string `json:"types"`
	Abilities []string `json:"abilities"`
	Height    *int     `json:"height"`
	Weight    *int     `json:"weight"`
}

// EmptyDetail returns the default detail used whenever upstream data is
// missing or unusable.
func EmptyDetail() PokemonDetail {
	return PokemonDetail{Types: []string{}, Abilities: []string{}}
}

// Pokemon is a PokemonDetail merged with its name, as served to clients.
type Pokemon struct {
	Name string `json:"name"`
	PokemonDetail
}

// EvolutionNode is one species in an evolution tree.
type EvolutionNode struct {
	Name     *string         `json:"name"`
	Children []EvolutionNode `json:"children"`
}

// Pagination describes where a list response sits within the full result set.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	ItemsPerPage int  `json:"items_per_page"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ListResponse is the paginated, detail-enriched list returned by the service.
type ListResponse struct {
	Count      int        `json:"count"`
	Next       *string    `json:"next"`
	Previous   *string    `json:"previous"`
	Results    []Pokemon  `json:"results"`
	Pagination Pagination `json:"pagination"`
}
