package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pokedex-bff/pokedex/pkg/pokemon"
)

// Tool argument structs.

type listArgs struct {
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	Search      string `json:"search"`
	Type        string `json:"type"`
	Ability     string `json:"ability"`
	SkipDetails bool   `json:"skip_details"`
}

type nameArgs struct {
	Name string `json:"name"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"pokedex_list":        handleList,
	"pokedex_get":         handleGet,
	"pokedex_evolution":   handleEvolution,
	"pokedex_cache_stats": handleCacheStats,
}

var nameSchema = map[string]any{
	"type":     "object",
	"required": []string{"name"},
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Pokémon name or national dex number, e.g. \"pikachu\" or \"25\"",
		},
	},
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "pokedex_list",
		Description: "List Pokémon one page at a time, optionally filtered by name substring, type and ability, with sprite, types, abilities, height and weight.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page": map[string]any{
					"type":        "integer",
					"description": "1-indexed page number (optional, defaults to 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Page size (optional, defaults to 9)",
				},
				"search": map[string]any{
					"type":        "string",
					"description": "Case-insensitive name substring (optional)",
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Only Pokémon of this type, e.g. \"fire\" (optional)",
				},
				"ability": map[string]any{
					"type":        "string",
					"description": "Only Pokémon with this ability, e.g. \"overgrow\" (optional)",
				},
				"skip_details": map[string]any{
					"type":        "boolean",
					"description": "Return names only, without per-Pokémon details (optional)",
				},
			},
		},
	},
	{
		Name:        "pokedex_get",
		Description: "Show one Pokémon's sprite, types, abilities, height and weight.",
		InputSchema: nameSchema,
	},
	{
		Name:        "pokedex_evolution",
		Description: "Show the evolution tree that a Pokémon species belongs to.",
		InputSchema: nameSchema,
	},
	{
		Name:        "pokedex_cache_stats",
		Description: "Show response cache statistics (entries, hits, misses, hit rate).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// structuredResult renders text for people followed by the JSON form of v.
func structuredResult(text string, v any) ToolCallResult {
	res := textResult(text)
	if data, err := json.Marshal(v); err == nil {
		res.Content = append(res.Content, ContentBlock{Type: "text", Text: string(data)})
	}
	return res
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func serviceError(prefix string, err error) ToolCallResult {
	if errors.Is(err, pokemon.ErrBadGateway) {
		return errorResult(prefix + ": the Pokémon API is unavailable, try again later")
	}
	return errorResult(prefix + ": " + err.Error())
}

func handleList(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args listArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return errorResult("Invalid arguments: " + err.Error())
		}
	}
	resp, err := s.pokedex.List(ctx, pokemon.ListParams{
		Page:        args.Page,
		Limit:       args.Limit,
		Search:      args.Search,
		Type:        args.Type,
		Ability:     args.Ability,
		SkipDetails: args.SkipDetails,
	})
	if err != nil {
		return serviceError("Error listing Pokémon", err)
	}
	return structuredResult(formatList(resp), resp)
}

func handleGet(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args nameArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Name == "" {
		return errorResult("name is required")
	}
	p, err := s.pokedex.Get(ctx, args.Name)
	if err != nil {
		return serviceError("Error fetching Pokémon", err)
	}
	return structuredResult(formatPokemon(p), p)
}

func handleEvolution(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args nameArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Name == "" {
		return errorResult("name is required")
	}
	tree, err := s.pokedex.Evolution(ctx, args.Name)
	if err != nil {
		return serviceError("Error fetching evolution chain", err)
	}
	return structuredResult(formatEvolution(tree), tree)
}

func handleCacheStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return errorResult("Error fetching cache stats: " + err.Error())
	}
	return textResult(formatCacheStats(stats))
}
