package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pokemon/pikachu", r.URL.Path)
		w.Write([]byte(`{"name":"pikachu","height":4}`))
	}))
	defer upstream.Close()

	c := New(upstream.URL, time.Second, nil)
	body, err := c.Fetch(context.Background(), c.PokemonURL("Pikachu"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pikachu","height":4}`, string(body))

	body, ok := c.Get(context.Background(), c.PokemonURL("pikachu"))
	assert.True(t, ok)
	assert.NotEmpty(t, body)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			want:    ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: ErrUnavailable,
		},
		{
			name:    "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"name":`)) },
			want:    ErrUnavailable,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.Write([]byte(`{}`))
			},
			want: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			c := New(upstream.URL, 50*time.Millisecond, nil)
			_, err := c.Fetch(context.Background(), upstream.URL+"/pokemon/x")
			assert.ErrorIs(t, err, tt.want)

			_, ok := c.Get(context.Background(), upstream.URL+"/pokemon/x")
			assert.False(t, ok)
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := upstream.URL
	upstream.Close()

	c := New(addr, time.Second, nil)
	_, err := c.Fetch(context.Background(), addr+"/pokemon")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestURLs(t *testing.T) {
	c := New("https://pokeapi.co/api/v2/", 0, nil)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon?limit=9&offset=18", c.ListURL(18, 9))
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon/mr-mime", c.PokemonURL(" Mr-Mime "))
	assert.Equal(t, "https://pokeapi.co/api/v2/type/fire", c.TypeURL("FIRE"))
	assert.Equal(t, "https://pokeapi.co/api/v2/ability/overgrow", c.AbilityURL("overgrow"))
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon-species/eevee", c.SpeciesURL("eevee"))
}
