package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// ChainDocument normalizes a raw /evolution-chain/{id} document by
// descending into its "chain" root.
func ChainDocument(raw []byte) models.EvolutionNode {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return Chain(gjson.Result{})
	}
	return Chain(gjson.GetBytes(raw, "chain"))
}

// Chain normalizes one evolution chain node and, recursively, everything
// that evolves from it. A missing or empty node yields a nameless leaf.
func Chain(node gjson.Result) models.EvolutionNode {
	out := models.EvolutionNode{Children: []models.EvolutionNode{}}
	if !node.IsObject() {
		return out
	}
	out.Name = optionalString(node.Get("species.name"))

	branches := node.Get("evolves_to")
	if !branches.IsArray() {
		return out
	}
	evolvesTo := branches.Array()
	if len(evolvesTo) == 0 {
		return out
	}
	out.Children = make([]models.EvolutionNode, 0, len(evolvesTo))
	for _, child := range evolvesTo {
		out.Children = append(out.Children, Chain(child))
	}
	return out
}
