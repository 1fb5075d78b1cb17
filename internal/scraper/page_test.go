package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `<!doctype html>
<html lang="sv">
<head>
  <title>Pannkakor | Bloggen</title>
  <meta name="description" content="Tunna pannkakor">
  <meta property="og:image" content="https://example.com/p.jpg">
  <link rel="canonical" href="/pannkakor">
  <script type="application/ld+json">
  {"@context":"https://schema.org","@graph":[
    {"@type":"WebSite","name":"Bloggen"},
    {"@type":["Recipe"],"name":"Pannkakor","recipeIngredient":["3 ägg","6 dl mjölk"]}
  ]}
  </script>
  <script>var tracking = true;</script>
</head>
<body><h1>Pannkakor</h1><p>Vispa ihop allt.</p></body>
</html>`

func TestParsePage(t *testing.T) {
	p := ParsePage(recipePage, "https://example.com/recept/1")

	assert.Equal(t, "Pannkakor | Bloggen", p.Title)
	assert.Equal(t, "sv", p.Language)
	assert.Equal(t, "Tunna pannkakor", p.Description)
	assert.Equal(t, "https://example.com/p.jpg", p.Image)
	assert.Equal(t, "https://example.com/pannkakor", p.Canonical)

	require.Len(t, p.RecipeJSONLD, 1)
	assert.Contains(t, p.RecipeJSONLD[0], `"recipeIngredient"`)

	assert.Contains(t, p.Markdown, "Vispa ihop allt.")
	assert.NotContains(t, p.Markdown, "tracking")
}

func TestPromptContentTruncates(t *testing.T) {
	p := &Page{Title: "Soup", Markdown: strings.Repeat("å", 100)}

	full := p.PromptContent(0)
	assert.True(t, strings.HasPrefix(full, "# Soup\n\n"))

	short := p.PromptContent(10)
	assert.Equal(t, 10, len([]rune(short)))
}

func TestRecipeBlocksIgnoresInvalidJSON(t *testing.T) {
	assert.Empty(t, recipeBlocks("{not json"))
	assert.Len(t, recipeBlocks(`[{"@type":"Recipe","name":"a"},{"@type":"Recipe","name":"b"}]`), 2)
}
