package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for recipe documents.
//
// Name and ingredient names carry English stemming so "tomatoes" finds
// "tomato". Tags use the keyword analyzer so slugs like "main-course" stay
// whole for exact filtering and faceting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName
	name.Store = true
	name.IncludeTermVectors = true // highlighting
	docMapping.AddFieldMappingsAt("name", name)

	// Instructions are searchable but too large to store.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = false
	docMapping.AddFieldMappingsAt("text", text)

	ingredients := bleve.NewTextFieldMapping()
	ingredients.Analyzer = en.AnalyzerName
	ingredients.Store = false
	ingredients.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("ingredients", ingredients)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	tags.Store = true
	tags.IncludeTermVectors = true // faceting
	docMapping.AddFieldMappingsAt("tags", tags)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", id)

	for _, field := range []string{"author_id", "cooking_time", "created_at"} {
		num := bleve.NewNumericFieldMapping()
		num.Store = true
		docMapping.AddFieldMappingsAt(field, num)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
