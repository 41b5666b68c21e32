package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-bff/pokedex/pkg/cache/memory"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/pokeapitest"
	"github.com/pokedex-bff/pokedex/pkg/pokemon"
	"github.com/pokedex-bff/pokedex/pkg/upstream"
)

// fakeCache implements CacheStatter for testing.
type fakeCache struct {
	stats models.CacheStats
}

func (f *fakeCache) Stats(context.Context) (models.CacheStats, error) { return f.stats, nil }

func newTestServer(t *testing.T, cache CacheStatter) (*Server, *pokeapitest.Server) {
	t.Helper()
	api := pokeapitest.NewServer()
	t.Cleanup(api.Close)
	up := upstream.New(api.BaseURL(), 2*time.Second, nil)
	svc := pokemon.New(up, memory.New(), pokemon.DefaultOptions(), nil)
	return New(svc, cache, "test", nil), api
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	require.NoError(t, err)
	line = append(line, '\n')

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader(line), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), "raw: %s", out.String())
	return resp
}

func callTool(t *testing.T, srv *Server, name, args string) ToolCallResult {
	t.Helper()
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: json.RawMessage(args)})
	require.NoError(t, err)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "tools/call",
		Params:  params,
	})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result ToolCallResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.NotEmpty(t, result.Content)
	return result
}

func TestInitialize(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "pokedex", result.ServerInfo.Name)
	assert.Equal(t, "test", result.ServerInfo.Version)
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	require.NoError(t, json.Unmarshal(data, &result))

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.Contains(t, toolHandlers, tool.Name, "tool without handler")
	}
	assert.ElementsMatch(t, []string{"pokedex_list", "pokedex_get", "pokedex_evolution", "pokedex_cache_stats"}, names)
}

func TestToolCallList(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_list", `{"type":"fire","limit":2}`)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "charmander")
	assert.Contains(t, result.Content[0].Text, "Page 1 of 2 (3 total)")

	require.Len(t, result.Content, 2, "structured JSON block expected")
	var resp models.ListResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[1].Text), &resp))
	assert.Equal(t, 3, resp.Count)
	require.NotNil(t, resp.Next)
}

func TestToolCallListEmpty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_list", `{"search":"zzz"}`)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "No Pokémon found")
}

func TestToolCallListUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_list", `{"type":"shadow"}`)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
}

func TestToolCallGet(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_get", `{"name":"Squirtle"}`)
	assert.False(t, result.IsError)
	text := result.Content[0].Text
	assert.True(t, strings.HasPrefix(text, "squirtle\n"), text)
	assert.Contains(t, text, "water")
	assert.Contains(t, text, pokeapitest.SpriteURL("squirtle"))
}

func TestToolCallGetErrors(t *testing.T) {
	srv, api := newTestServer(t, nil)
	api.Fail("/pokemon/pidgey")

	assert.True(t, callTool(t, srv, "pokedex_get", `{}`).IsError, "missing name")
	assert.True(t, callTool(t, srv, "pokedex_get", `{"name":"agumon"}`).IsError)

	result := callTool(t, srv, "pokedex_get", `{"name":"pidgey"}`)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "unavailable")
}

func TestToolCallEvolution(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_evolution", `{"name":"venusaur"}`)
	assert.False(t, result.IsError)
	assert.Equal(t, "bulbasaur\n└─ ivysaur\n   └─ venusaur\n", result.Content[0].Text)
}

func TestToolCallCacheNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_cache_stats", "")
	assert.Contains(t, result.Content[0].Text, "not configured")
}

func TestToolCallCacheStats(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCache{stats: models.CacheStats{Entries: 42, Hits: 10, Misses: 5}})

	text := callTool(t, srv, "pokedex_cache_stats", "").Content[0].Text
	assert.Contains(t, text, "42")
	assert.Contains(t, text, "66.7%")
}

func TestUnknownTool(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result := callTool(t, srv, "pokedex_teleport", `{}`)
	assert.True(t, result.IsError)
}

func TestNotificationNoResponse(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	line, _ := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  "notifications/initialized",
	})
	line = append(line, '\n')

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader(line), &out))
	assert.Zero(t, out.Len(), "expected no output for notification, got: %s", out.String())
}

func TestParseError(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), strings.NewReader("{not json\n"), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}

func TestUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`9`),
		Method:  "unknown/method",
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := srv.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}
