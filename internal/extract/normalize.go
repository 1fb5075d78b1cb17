package extract

import (
	"slices"
	"time"

	"recipebox/internal/model"
)

// Normalizer turns parsed model output into Recipe values. Zero values use
// random UUIDs and the wall clock.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

func (n Normalizer) id() string {
	if n.NewID != nil {
		return n.NewID()
	}
	return newID()
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}

// ToRecipe builds a fresh Recipe from in. Cross-language array lengths are
// copied as they are, even when they differ.
func (n Normalizer) ToRecipe(in IntermediateRecipe) model.Recipe {
	now := n.now()
	return model.Recipe{
		ID:        n.id(),
		CreatedAt: now,
		UpdatedAt: now,

		TitleEnglish:  in.TitleEnglish,
		TitleSwedish:  in.TitleSwedish,
		TitleRomanian: in.TitleRomanian,

		IngredientsEnglish:  model.OrEmpty(in.IngredientsEnglish),
		IngredientsSwedish:  model.OrEmpty(in.IngredientsSwedish),
		IngredientsRomanian: model.OrEmpty(in.IngredientsRomanian),

		InstructionsEnglish:  model.OrEmpty(in.InstructionsEnglish),
		InstructionsSwedish:  model.OrEmpty(in.InstructionsSwedish),
		InstructionsRomanian: model.OrEmpty(in.InstructionsRomanian),

		NotesEnglish:  in.NotesEnglish,
		NotesSwedish:  in.NotesSwedish,
		NotesRomanian: in.NotesRomanian,

		Tags:             model.UniqueTags(in.Tags),
		Servings:         in.Servings,
		PrepTime:         in.PrepTime,
		CookTime:         in.CookTime,
		DetectedLanguage: in.DetectedLanguage,
	}
}

// ApplyTranslation returns base with its Swedish and Romanian content
// replaced by whatever t carries. English content and metadata are kept.
func (n Normalizer) ApplyTranslation(base model.Recipe, t PartialTranslation) model.Recipe {
	out := base
	out.IngredientsEnglish = slices.Clone(base.IngredientsEnglish)
	out.InstructionsEnglish = slices.Clone(base.InstructionsEnglish)
	out.IngredientsSwedish = slices.Clone(base.IngredientsSwedish)
	out.IngredientsRomanian = slices.Clone(base.IngredientsRomanian)
	out.InstructionsSwedish = slices.Clone(base.InstructionsSwedish)
	out.InstructionsRomanian = slices.Clone(base.InstructionsRomanian)
	out.Tags = slices.Clone(base.Tags)

	if t.TitleSwedish != nil {
		out.TitleSwedish = *t.TitleSwedish
	}
	if t.TitleRomanian != nil {
		out.TitleRomanian = *t.TitleRomanian
	}
	if t.IngredientsSwedish != nil {
		out.IngredientsSwedish = t.IngredientsSwedish
	}
	if t.IngredientsRomanian != nil {
		out.IngredientsRomanian = t.IngredientsRomanian
	}
	if t.InstructionsSwedish != nil {
		out.InstructionsSwedish = t.InstructionsSwedish
	}
	if t.InstructionsRomanian != nil {
		out.InstructionsRomanian = t.InstructionsRomanian
	}
	if t.NotesSwedish.Set {
		out.NotesSwedish = t.NotesSwedish.Value
	}
	if t.NotesRomanian.Set {
		out.NotesRomanian = t.NotesRomanian.Value
	}
	return out
}
