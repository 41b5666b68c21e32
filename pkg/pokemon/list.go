package pokemon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/cache"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/normalize"
	"github.com/pokedex-bff/pokedex/pkg/upstream"
)

// ListParams selects one page of the Pokémon list.
type ListParams struct {
	// Page is 1-indexed; values below 1 are clamped to 1.
	Page int
	// Limit is the page size; 0 means the default, and it is capped at the maximum.
	Limit int
	// Search keeps only names containing it, case-insensitively.
	Search string
	// Type and Ability restrict the list to a category's members.
	Type    string
	Ability string
	// SkipDetails returns empty details without any detail requests.
	SkipDetails bool
}

func (s *Service) normalizeParams(p ListParams) ListParams {
	p.Page = max(p.Page, 1)
	if p.Limit <= 0 {
		p.Limit = s.opts.DefaultLimit
	}
	p.Limit = min(p.Limit, s.opts.MaxLimit)
	// Keep (Page-1)*Limit and offset+Limit inside int range.
	p.Page = min(p.Page, math.MaxInt/p.Limit)
	p.Search = normalizeParam(p.Search)
	p.Type = normalizeParam(p.Type)
	p.Ability = normalizeParam(p.Ability)
	return p
}

// List returns one page of Pokémon, filtered and enriched with details.
// Filtering happens on the whole candidate set before slicing, so Count is
// the true number of matches. A failed category or base list lookup fails
// the call; a failed detail only empties that item's details.
func (s *Service) List(ctx context.Context, params ListParams) (models.ListResponse, error) {
	p := s.normalizeParams(params)
	offset := (p.Page - 1) * p.Limit

	var (
		window []models.ListItemRef
		total  int
	)
	switch {
	case p.Type != "" || p.Ability != "":
		candidates, err := s.categoryCandidates(ctx, p.Type, p.Ability)
		if err != nil {
			return models.ListResponse{}, err
		}
		candidates = filterByName(candidates, p.Search)
		total, window = len(candidates), slice(candidates, offset, p.Limit)
	case p.Search != "":
		candidates, err := s.searchCandidates(ctx, p.Search)
		if err != nil {
			return models.ListResponse{}, err
		}
		total, window = len(candidates), slice(candidates, offset, p.Limit)
	default:
		page, err := s.listPage(ctx, offset, p.Limit)
		if err != nil {
			return models.ListResponse{}, err
		}
		total, window = page.Count, page.Results
		if len(window) > p.Limit {
			window = window[:p.Limit]
		}
	}

	results := make([]models.Pokemon, len(window))
	if p.SkipDetails {
		for i, ref := range window {
			results[i] = models.Pokemon{Name: ref.Name, PokemonDetail: models.EmptyDetail()}
		}
	} else {
		urls := make([]string, len(window))
		for i, ref := range window {
			urls[i] = ref.URL
		}
		details := s.details.FetchAll(ctx, urls)
		for i, ref := range window {
			results[i] = models.Pokemon{Name: ref.Name, PokemonDetail: details[i]}
		}
	}

	resp := models.ListResponse{Count: total, Results: results}
	totalPages := (total + p.Limit - 1) / p.Limit
	if offset+p.Limit < total {
		resp.Next = s.link(p, p.Page+1)
	}
	if p.Page > 1 && total > 0 {
		resp.Previous = s.link(p, min(p.Page-1, totalPages))
	}
	resp.Pagination = models.Pagination{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: p.Limit,
		HasNext:      resp.Next != nil,
		HasPrevious:  resp.Previous != nil,
	}
	return resp, nil
}

// listPage returns one upstream list window, cached with the short TTL.
func (s *Service) listPage(ctx context.Context, offset, limit int) (models.ListPage, error) {
	key := cache.ListKey(offset, limit, "")
	var page models.ListPage
	if cache.GetJSON(ctx, s.cache, key, &page) {
		return page, nil
	}

	raw, err := s.up.Fetch(ctx, s.up.ListURL(offset, limit))
	if err != nil {
		return models.ListPage{}, s.gatewayError("list lookup", key, err)
	}
	page, err = normalize.ListPage(raw)
	if err != nil {
		return models.ListPage{}, s.gatewayError("list lookup", key, err)
	}

	s.store(ctx, key, page)
	return page, nil
}

// searchCandidates returns every Pokémon whose name contains search.
func (s *Service) searchCandidates(ctx context.Context, search string) ([]models.ListItemRef, error) {
	key := cache.ListKey(0, s.opts.IndexLimit, search)
	var matches []models.ListItemRef
	if cache.GetJSON(ctx, s.cache, key, &matches) {
		return matches, nil
	}

	index, err := s.listPage(ctx, 0, s.opts.IndexLimit)
	if err != nil {
		return nil, err
	}
	matches = filterByName(index.Results, search)

	s.store(ctx, key, matches)
	return matches, nil
}

// categoryCandidates returns the members of the type and/or ability. With
// both, the result is the type's members that also have the ability.
func (s *Service) categoryCandidates(ctx context.Context, typ, ability string) ([]models.ListItemRef, error) {
	var typeMembers, abilityMembers []models.ListItemRef
	var err error
	if typ != "" {
		typeMembers, err = s.category(ctx, cache.TypeKey(typ), s.up.TypeURL(typ), "type", typ)
		if err != nil {
			return nil, err
		}
	}
	if ability != "" {
		abilityMembers, err = s.category(ctx, cache.AbilityKey(ability), s.up.AbilityURL(ability), "ability", ability)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case typ == "":
		return abilityMembers, nil
	case ability == "":
		return typeMembers, nil
	}
	withAbility := make(map[string]bool, len(abilityMembers))
	for _, m := range abilityMembers {
		withAbility[m.Name] = true
	}
	both := make([]models.ListItemRef, 0, min(len(typeMembers), len(abilityMembers)))
	for _, m := range typeMembers {
		if withAbility[m.Name] {
			both = append(both, m)
		}
	}
	return both, nil
}

// category fetches a type or ability member list, cached with the short TTL.
func (s *Service) category(ctx context.Context, key, rawURL, kind, name string) ([]models.ListItemRef, error) {
	var members []models.ListItemRef
	if cache.GetJSON(ctx, s.cache, key, &members) {
		return members, nil
	}

	raw, err := s.up.Fetch(ctx, rawURL)
	if errors.Is(err, upstream.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	if err != nil {
		return nil, s.gatewayError(kind+" lookup", name, err)
	}
	members, err = normalize.CategoryMembers(raw)
	if err != nil {
		return nil, s.gatewayError(kind+" lookup", name, err)
	}

	s.store(ctx, key, members)
	return members, nil
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, s.cache, key, v, s.opts.ShortTTL); err != nil {
		s.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// link builds a continuation link carrying every active list parameter.
func (s *Service) link(p ListParams, page int) *string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Ability != "" {
		q.Set("ability", p.Ability)
	}
	if p.SkipDetails {
		q.Set("skip_details", "true")
	}
	link := s.opts.LinkBase + "?" + q.Encode()
	return &link
}

func filterByName(refs []models.ListItemRef, search string) []models.ListItemRef {
	if search == "" {
		return refs
	}
	out := make([]models.ListItemRef, 0, len(refs))
	for _, r := range refs {
		if strings.Contains(strings.ToLower(r.Name), search) {
			out = append(out, r)
		}
	}
	return out
}

// slice returns refs[offset:offset+limit], clipped to the bounds of refs.
func slice(refs []models.ListItemRef, offset, limit int) []models.ListItemRef {
	if offset < 0 || offset >= len(refs) {
		return []models.ListItemRef{}
	}
	return refs[offset:min(offset+limit, len(refs))]
}
