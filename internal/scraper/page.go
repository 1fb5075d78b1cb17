package scraper

import (
	"encoding/json"
	"net/url"
	"strings"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Page is a reduced view of a fetched recipe page.
type Page struct {
	URL         string
	Title       string
	Language    string
	Description string
	Image       string
	Canonical   string
	// RecipeJSONLD holds schema.org Recipe objects found in the page, as JSON.
	RecipeJSONLD []string
	Markdown     string
}

// ParsePage extracts metadata, schema.org recipe blocks and a markdown
// rendering from htmlStr. Parse failures degrade to a page carrying only
// the best-effort markdown.
func ParsePage(htmlStr, pageURL string) *Page {
	u, _ := url.Parse(pageURL)
	host := ""
	if u != nil {
		host = u.Hostname()
	}

	converter := htmlmd.NewConverter(host, true, nil)
	converter.Remove("script", "style", "noscript", "iframe", "svg")
	markdown, mdErr := converter.ConvertString(htmlStr)

	page := &Page{URL: pageURL, Markdown: markdown}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		if mdErr != nil {
			page.Markdown = ""
		}
		return page
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		page.RecipeJSONLD = append(page.RecipeJSONLD, recipeBlocks(sel.Text())...)
	})

	if mdErr != nil {
		page.Markdown = strings.TrimSpace(doc.Find("body").Text())
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if og := doc.Find("meta[property='og:title']").AttrOr("content", ""); og != "" {
		page.Title = og
	}
	page.Language, _ = doc.Find("html").First().Attr("lang")
	page.Description = doc.Find("meta[name=description]").AttrOr("content", "")
	page.Image = doc.Find("meta[property='og:image']").AttrOr("content", "")

	if canonical := doc.Find("link[rel=canonical]").AttrOr("href", ""); canonical != "" {
		if cu, err := url.Parse(canonical); err == nil {
			if u != nil && !cu.IsAbs() {
				cu = u.ResolveReference(cu)
			}
			page.Canonical = cu.String()
		}
	}

	return page
}

// PromptContent renders the page for an LLM prompt: schema.org recipe data
// first when present, then the markdown body, capped at maxChars runes.
func (p *Page) PromptContent(maxChars int) string {
	var b strings.Builder
	if p.Title != "" {
		b.WriteString("# " + p.Title + "\n\n")
	}
	for _, block := range p.RecipeJSONLD {
		b.WriteString("```json\n" + block + "\n```\n\n")
	}
	b.WriteString(p.Markdown)
	return truncateRunes(b.String(), maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// recipeBlocks returns every schema.org Recipe object inside a JSON-LD
// script, looking through top-level arrays and @graph containers.
func recipeBlocks(raw string) []string {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil
	}

	var out []string
	var walk func(any)
	walk = func(n any) {
		switch t := n.(type) {
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			if isRecipeType(t["@type"]) {
				if b, err := json.Marshal(t); err == nil {
					out = append(out, string(b))
				}
				return
			}
			if g, ok := t["@graph"]; ok {
				walk(g)
			}
		}
	}
	walk(v)
	return out
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}
