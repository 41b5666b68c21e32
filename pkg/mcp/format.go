package mcp

import (
	"fmt"
	"strings"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// formatList formats one list page as a text table.
func formatList(resp models.ListResponse) string {
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No Pokémon found (%d total).", resp.Count)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-18s %-32s %6s %6s\n",
		"Name", "Types", "Abilities", "Height", "Weight")
	b.WriteString(strings.Repeat("-", 82) + "\n")
	for _, p := range resp.Results {
		fmt.Fprintf(&b, "%-16s %-18s %-32s %6s %6s\n",
			p.Name, joinOrDash(p.Types), joinOrDash(p.Abilities), intOrDash(p.Height), intOrDash(p.Weight))
	}
	pg := resp.Pagination
	fmt.Fprintf(&b, "\nPage %d of %d (%d total)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
	return b.String()
}

// formatPokemon formats a single Pokémon as text.
func formatPokemon(p models.Pokemon) string {
	sprite := "-"
	if p.Sprite != nil {
		sprite = *p.Sprite
	}
	return fmt.Sprintf("%s\n"+
		"  Types:     %s\n"+
		"  Abilities: %s\n"+
		"  Height:    %s dm\n"+
		"  Weight:    %s hg\n"+
		"  Sprite:    %s\n",
		p.Name, joinOrDash(p.Types), joinOrDash(p.Abilities), intOrDash(p.Height), intOrDash(p.Weight), sprite)
}

// formatEvolution renders an evolution tree with one species per line,
// indented by stage.
func formatEvolution(root models.EvolutionNode) string {
	var b strings.Builder
	var walk func(n models.EvolutionNode, depth int)
	walk = func(n models.EvolutionNode, depth int) {
		name := "?"
		if n.Name != nil {
			name = *n.Name
		}
		if depth == 0 {
			b.WriteString(name + "\n")
		} else {
			fmt.Fprintf(&b, "%s└─ %s\n", strings.Repeat("   ", depth-1), name)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return b.String()
}

// formatCacheStats formats cache stats as text.
func formatCacheStats(stats models.CacheStats) string {
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n",
		stats.Entries, stats.Hits, stats.Misses, hitRate)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
