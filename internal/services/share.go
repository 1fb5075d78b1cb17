package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"recipebox/internal/model"
)

// ShareText renders a recipe as plain text in the given language.
func ShareText(r model.Recipe, lang model.Language) string {
	var b strings.Builder

	b.WriteString(r.Title(lang))
	b.WriteString("\n\n")

	var meta []string
	if r.Servings != nil {
		meta = append(meta, fmt.Sprintf("Servings: %d", *r.Servings))
	}
	if r.PrepTime != nil {
		meta = append(meta, "Prep: "+*r.PrepTime)
	}
	if r.CookTime != nil {
		meta = append(meta, "Cook: "+*r.CookTime)
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " | "))
		b.WriteString("\n")
	}

	if r.Rating != nil {
		n := min(max(*r.Rating, 0), 5)
		fmt.Fprintf(&b, "Rating: %s%s (%d/5)\n", strings.Repeat("★", n), strings.Repeat("☆", 5-n), *r.Rating)
	}
	b.WriteString("\n")

	if len(r.Tags) > 0 {
		var shown []string
		for _, key := range r.Tags {
			if tag, ok := model.LookupTag(key); ok {
				shown = append(shown, tag.Emoji+" "+key)
			}
		}
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(shown, " "))
	}

	b.WriteString("INGREDIENTS:\n")
	for _, ing := range r.Ingredients(lang) {
		b.WriteString("- " + ing.Text + "\n")
	}
	b.WriteString("\n")

	b.WriteString("INSTRUCTIONS:\n")
	for i, step := range r.Instructions(lang) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	if notes := r.Notes(lang); notes != nil && strings.TrimSpace(*notes) != "" {
		b.WriteString("\nNOTES:\n")
		b.WriteString(*notes + "\n")
	}

	return b.String()
}

// ShoppingItem is one line of a shopping-list export.
type ShoppingItem struct {
	Name     string  `json:"name"`
	Quantity *string `json:"quantity,omitempty"`
}

// ShoppingListExport is the payload understood by the QuickyShoppy app.
type ShoppingListExport struct {
	Version string         `json:"version"`
	Items   []ShoppingItem `json:"items"`
}

const shoppingListScheme = "quickyshoppy://import?data="

// ShoppingList builds the export from the ingredients in lang. Quantity is
// the amount and unit joined by a space, omitted when both are empty.
func ShoppingList(r model.Recipe, lang model.Language) ShoppingListExport {
	ings := r.Ingredients(lang)
	items := make([]ShoppingItem, 0, len(ings))
	for _, ing := range ings {
		var parts []string
		if ing.Amount != nil {
			parts = append(parts, *ing.Amount)
		}
		if ing.Unit != nil {
			parts = append(parts, *ing.Unit)
		}
		item := ShoppingItem{Name: ing.Name}
		if q := strings.Join(parts, " "); strings.TrimSpace(q) != "" {
			item.Quantity = &q
		}
		items = append(items, item)
	}
	return ShoppingListExport{Version: "1.0", Items: items}
}

// ShoppingListLink encodes the export as a QuickyShoppy import link.
func ShoppingListLink(list ShoppingListExport) (string, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return shoppingListScheme + base64.StdEncoding.EncodeToString(data), nil
}
