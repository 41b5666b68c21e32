// Package normalize maps raw upstream JSON documents onto the fixed
// internal shapes in pkg/models. The detail and evolution normalizers are
// total: missing or malformed fields fall back to defaults instead of
// failing. The list, category and species projections are used for
// request-level data and report unusable shapes as errors.
package normalize

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// Detail normalizes a raw /pokemon/{name} document. nil, empty or
// non-object input yields models.EmptyDetail.
func Detail(raw []byte) models.PokemonDetail {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return models.EmptyDetail()
	}
	return DetailResult(gjson.ParseBytes(raw))
}

// DetailStrict is Detail for callers that must tell a usable document from
// an unusable one: anything other than a JSON object is rejected with
// ErrShape instead of being defaulted.
func DetailStrict(raw []byte) (models.PokemonDetail, error) {
	if !gjson.ValidBytes(raw) {
		return models.EmptyDetail(), fmt.Errorf("%w: detail is not JSON", ErrShape)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return models.EmptyDetail(), fmt.Errorf("%w: detail is not an object", ErrShape)
	}
	return DetailResult(doc), nil
}

// DetailResult normalizes an already parsed detail document.
func DetailResult(doc gjson.Result) models.PokemonDetail {
	d := models.EmptyDetail()
	if !doc.IsObject() {
		return d
	}
	d.Sprite = optionalString(doc.Get("sprites.front_default"))
	d.Types = projectNames(doc.Get("types"), "type.name")
	d.Abilities = projectNames(doc.Get("abilities"), "ability.name")
	d.Height = optionalInt(doc.Get("height"))
	d.Weight = optionalInt(doc.Get("weight"))
	return d
}

// projectNames maps a list of {<kind>:{name}} objects to bare names,
// keeping upstream order and skipping entries without a string name.
func projectNames(list gjson.Result, path string) []string {
	names := []string{}
	if !list.IsArray() {
		return names
	}
	for _, item := range list.Array() {
		if name := item.Get(path); name.Type == gjson.String {
			names = append(names, name.String())
		}
	}
	return names
}

func optionalString(r gjson.Result) *string {
	if r.Type != gjson.String || r.String() == "" {
		return nil
	}
	s := r.String()
	return &s
}

func optionalInt(r gjson.Result) *int {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return nil
	}
	n := int(r.Int())
	return &n
}
