package normalize

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// ErrShape is returned when a request-level document lacks the fields the
// service needs.
var ErrShape = errors.New("normalize: unexpected document shape")

// ListPage parses a raw /pokemon?offset=&limit= document.
func ListPage(raw []byte) (models.ListPage, error) {
	if !gjson.ValidBytes(raw) {
		return models.ListPage{}, fmt.Errorf("%w: list page is not JSON", ErrShape)
	}
	doc := gjson.ParseBytes(raw)
	count := doc.Get("count")
	results := doc.Get("results")
	if count.Type != gjson.Number || !results.IsArray() {
		return models.ListPage{}, fmt.Errorf("%w: list page needs count and results", ErrShape)
	}

	page := models.ListPage{
		Count:    int(count.Int()),
		Next:     optionalString(doc.Get("next")),
		Previous: optionalString(doc.Get("previous")),
		Results:  make([]models.ListItemRef, 0, len(results.Array())),
	}
	for _, item := range results.Array() {
		if ref, ok := itemRef(item); ok {
			page.Results = append(page.Results, ref)
		}
	}
	return page, nil
}

// CategoryMembers parses a raw /type/{name} or /ability/{name} document
// into its full, unpaginated member list.
func CategoryMembers(raw []byte) ([]models.ListItemRef, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: category is not JSON", ErrShape)
	}
	members := gjson.GetBytes(raw, "pokemon")
	if !members.IsArray() {
		return nil, fmt.Errorf("%w: category needs a pokemon list", ErrShape)
	}

	refs := make([]models.ListItemRef, 0, len(members.Array()))
	for _, m := range members.Array() {
		if ref, ok := itemRef(m.Get("pokemon")); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// EvolutionChainURL extracts the evolution chain link from a raw
// /pokemon-species/{name} document.
func EvolutionChainURL(raw []byte) (string, error) {
	u := gjson.GetBytes(raw, "evolution_chain.url")
	if u.Type != gjson.String || u.String() == "" {
		return "", fmt.Errorf("%w: species has no evolution_chain.url", ErrShape)
	}
	return u.String(), nil
}

func itemRef(r gjson.Result) (models.ListItemRef, bool) {
	name, u := r.Get("name"), r.Get("url")
	if name.Type != gjson.String || u.Type != gjson.String {
		return models.ListItemRef{}, false
	}
	return models.ListItemRef{Name: name.String(), URL: u.String()}, true
}
