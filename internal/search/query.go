package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders accepted by SearchParams.SortBy.
const (
	SortRelevance   = "relevance"
	SortRecent      = "recent"
	SortName        = "name"
	SortCookingTime = "cooking_time"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // free text over name, instructions and ingredient names

	TagSlugs       []string // OR across slugs, like recipe listings
	AuthorID       int64
	MaxCookingTime int // minutes; zero means no bound

	Limit  int
	Offset int

	SortBy        string
	IncludeFacets bool // tag counts over the whole match set
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        SortRelevance,
		IncludeFacets: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Tags   []FacetCount `json:"tags,omitempty"`
}

// SearchHit represents a single matching recipe. Callers hydrate full
// recipes from the store by RecipeID.
type SearchHit struct {
	RecipeID    int64             `json:"recipe_id"`
	Score       float64           `json:"score"`
	Name        string            `json:"name"`
	CookingTime int               `json:"cooking_time"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

const tagsFacet = "tags"

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet(tagsFacet, bleve.NewFacetRequest(tagsFacet, 20))
	}

	if params.Query != "" {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("ingredients")
	}

	searchRequest.Fields = []string{"name", "cooking_time"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		recipeID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with malformed id", "id", hit.ID)
			continue
		}

		searchHit := SearchHit{
			RecipeID: recipeID,
			Score:    hit.Score,
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if ct, ok := hit.Fields["cooking_time"].(float64); ok {
			searchHit.CookingTime = int(ct)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if facet, ok := searchResult.Facets[tagsFacet]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Tags = append(result.Tags, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params. Text clauses are
// OR'd together; filters are AND'd onto the result.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		ingredientMatch := bleve.NewMatchQuery(q)
		ingredientMatch.SetField("ingredients")
		ingredientMatch.SetBoost(1.5)

		textMatch := bleve.NewMatchQuery(q)
		textMatch.SetField("text")
		textMatch.SetBoost(0.7)

		// Typo tolerance on the name only.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, ingredientMatch, textMatch, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.TagSlugs) > 0 {
		tagQueries := make([]query.Query, len(params.TagSlugs))
		for i, slug := range params.TagSlugs {
			tq := bleve.NewTermQuery(slug)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if params.AuthorID > 0 {
		id := float64(params.AuthorID)
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&id, &id, &inclusive, &inclusive)
		rq.SetField("author_id")
		queries = append(queries, rq)
	}

	if params.MaxCookingTime > 0 {
		limit := float64(params.MaxCookingTime)
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(nil, &limit, nil, &inclusive)
		rq.SetField("cooking_time")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order. Every order breaks ties by document ID
// so pagination is stable.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case SortRecent:
		req.SortBy([]string{"-created_at", "_id"})
	case SortName:
		req.SortBy([]string{"name", "_id"})
	case SortCookingTime:
		req.SortBy([]string{"cooking_time", "_id"})
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}
