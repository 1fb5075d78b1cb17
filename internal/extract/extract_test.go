package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/formats"
	"recipebox/internal/llm"
	"recipebox/internal/model"
	"recipebox/internal/transport"
)

// fakeLLM records the parts it receives and answers with a canned reply.
type fakeLLM struct {
	mu     sync.Mutex
	calls  int
	apiKey string
	parts  []llm.Part
	reply  string
	err    error
}

func (f *fakeLLM) Complete(ctx context.Context, apiKey string, parts []llm.Part) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.apiKey = apiKey
	f.parts = parts
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.reply, f.err
}

const pancakesReply = "Here you go:\n{\"titleEnglish\":\"Pancakes\",\"ingredientsEnglish\":[{\"text\":\"2 eggs\",\"amount\":\"2\",\"unit\":null,\"name\":\"eggs\"}],\"instructionsEnglish\":[\"Mix\",\"Cook\"],\"servings\":4}"

func TestExtractFromTextPancakes(t *testing.T) {
	fake := &fakeLLM{reply: pancakesReply}
	svc := NewService(fake, nil)

	r, err := svc.ExtractFromText(context.Background(), "2 eggs, mix and cook", "key")
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Pancakes", r.TitleEnglish)
	require.Len(t, r.IngredientsEnglish, 1)
	assert.Equal(t, "eggs", r.IngredientsEnglish[0].Name)
	assert.Nil(t, r.IngredientsEnglish[0].Unit)
	assert.Equal(t, []string{"Mix", "Cook"}, r.InstructionsEnglish)
	require.NotNil(t, r.Servings)
	assert.Equal(t, 4, *r.Servings)

	assert.Empty(t, r.TitleSwedish)
	assert.Empty(t, r.TitleRomanian)
	assert.Empty(t, r.IngredientsSwedish)
	assert.Empty(t, r.IngredientsRomanian)
	assert.Empty(t, r.InstructionsSwedish)
	assert.Empty(t, r.InstructionsRomanian)

	require.Len(t, fake.parts, 1)
	assert.Equal(t, llm.PartText, fake.parts[0].Type)
	assert.Equal(t, ExtractionPrompt+"\n\nRecipe content:\n2 eggs, mix and cook", fake.parts[0].Text)
	assert.Equal(t, "key", fake.apiKey)
}

func TestExtractFromTextWithoutJSONFails(t *testing.T) {
	svc := NewService(&fakeLLM{reply: "I could not find a recipe in that text."}, nil)

	_, err := svc.ExtractFromText(context.Background(), "hello", "key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)

	var failed *ExtractionFailedError
	require.True(t, errors.As(err, &failed))
	assert.NotNil(t, failed.Cause)
}

func TestExtractFromTextPartialJSONSucceeds(t *testing.T) {
	svc := NewService(&fakeLLM{reply: `{"titleEnglish":"Toast","ingredientsSwedish":"oops"}`}, nil)

	r, err := svc.ExtractFromText(context.Background(), "toast", "key")
	require.NoError(t, err)
	assert.Equal(t, "Toast", r.TitleEnglish)
	assert.Empty(t, r.IngredientsSwedish)
}

func TestExtractFromURLPrompt(t *testing.T) {
	fake := &fakeLLM{reply: `{"titleEnglish":"Bread"}`}
	svc := NewService(fake, nil)

	_, err := svc.ExtractFromURL(context.Background(), "https://example.com/bread", "<html>bread</html>", "key")
	require.NoError(t, err)

	require.Len(t, fake.parts, 1)
	assert.Equal(t, ExtractionPrompt+"\n\nURL: https://example.com/bread\n\nPage content:\n<html>bread</html>", fake.parts[0].Text)
}

func TestExtractFromImageParts(t *testing.T) {
	fake := &fakeLLM{reply: `{"titleEnglish":"Cake"}`}
	svc := NewService(fake, nil)

	img := []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
	r, err := svc.ExtractFromImage(context.Background(), img, "", "key")
	require.NoError(t, err)
	assert.Equal(t, "Cake", r.TitleEnglish)

	require.Len(t, fake.parts, 2)
	assert.Equal(t, llm.PartImage, fake.parts[0].Type)
	assert.Equal(t, "image/png", fake.parts[0].MediaType)
	assert.Equal(t, img, fake.parts[0].Data)
	assert.Equal(t, llm.TextPart(ExtractionPrompt), fake.parts[1])
}

func TestExtractFromImageRejectsUnsupportedType(t *testing.T) {
	fake := &fakeLLM{}
	_, err := NewService(fake, nil).ExtractFromImage(context.Background(), []byte("GIF89a"), "image/tiff", "key")
	assert.ErrorIs(t, err, formats.ErrUnsupportedMediaType)
	assert.Zero(t, fake.calls)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestExtractFromImageReaderReadFailure(t *testing.T) {
	fake := &fakeLLM{}
	_, err := NewService(fake, nil).ExtractFromImageReader(context.Background(), failingReader{}, "image/jpeg", "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Zero(t, fake.calls)
}

func TestExtractFromImageReader(t *testing.T) {
	fake := &fakeLLM{reply: `{"titleEnglish":"Pie"}`}
	r, err := NewService(fake, nil).ExtractFromImageReader(context.Background(), strings.NewReader("jpegdata"), "image/jpeg", "key")
	require.NoError(t, err)
	assert.Equal(t, "Pie", r.TitleEnglish)
}

func TestMissingAPIKeySkipsNetwork(t *testing.T) {
	fake := &fakeLLM{reply: pancakesReply}
	svc := NewService(fake, nil)
	ctx := context.Background()

	_, err := svc.ExtractFromText(ctx, "x", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = svc.ExtractFromURL(ctx, "https://e.com", "<html/>", " ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = svc.ExtractFromImage(ctx, []byte("x"), "image/png", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = svc.TranslateRecipe(ctx, model.Recipe{}, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	assert.Zero(t, fake.calls)
}

func TestEmptyInput(t *testing.T) {
	fake := &fakeLLM{}
	svc := NewService(fake, nil)

	_, err := svc.ExtractFromText(context.Background(), "   ", "key")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = svc.ExtractFromURL(context.Background(), "https://e.com", "", "key")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, fake.calls)
}

func TestLLMErrorsPropagate(t *testing.T) {
	cases := []error{
		llm.ErrNoTextInResponse,
		&transport.HTTPError{StatusCode: 529, Body: "overloaded"},
		&transport.NetworkError{Err: errors.New("dial tcp: refused")},
		transport.ErrTimeout,
	}
	for _, want := range cases {
		svc := NewService(&fakeLLM{err: want}, nil)
		_, err := svc.ExtractFromText(context.Background(), "x", "key")
		assert.ErrorIs(t, err, want)
		assert.NotErrorIs(t, err, ErrExtractionFailed)
	}
}

func TestCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(&fakeLLM{reply: pancakesReply}, nil).ExtractFromText(ctx, "x", "key")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranslateRecipeOnlyTitle(t *testing.T) {
	fake := &fakeLLM{reply: `{"titleSwedish":"Soppa"}`}
	svc := NewService(fake, nil)

	in := model.Recipe{
		ID:                   "soup-1",
		TitleEnglish:         "Soup",
		TitleRomanian:        "Supă",
		IngredientsEnglish:   []model.Ingredient{{ID: "i1", Text: "1 l water", Name: "water"}},
		IngredientsSwedish:   []model.Ingredient{{ID: "i2", Text: "1 l vatten", Name: "vatten"}},
		IngredientsRomanian:  []model.Ingredient{{ID: "i3", Text: "1 l apă", Name: "apă"}},
		InstructionsEnglish:  []string{"Boil"},
		InstructionsSwedish:  []string{"Koka"},
		InstructionsRomanian: []string{"Fierbe"},
	}

	out, err := svc.TranslateRecipe(context.Background(), in, "key")
	require.NoError(t, err)

	assert.Equal(t, "Soppa", out.TitleSwedish)
	assert.Equal(t, "Supă", out.TitleRomanian)
	assert.Equal(t, in.IngredientsEnglish, out.IngredientsEnglish)
	assert.Equal(t, in.IngredientsSwedish, out.IngredientsSwedish)
	assert.Equal(t, in.IngredientsRomanian, out.IngredientsRomanian)
	assert.Equal(t, in.InstructionsSwedish, out.InstructionsSwedish)
	assert.Equal(t, in.InstructionsRomanian, out.InstructionsRomanian)
	assert.Equal(t, "soup-1", out.ID)

	require.Len(t, fake.parts, 1)
	prompt := fake.parts[0].Text
	assert.True(t, strings.HasPrefix(prompt, "Translate the following recipe content to Swedish and Romanian."))
	assert.Contains(t, prompt, `"titleEnglish":"Soup"`)
	assert.Contains(t, prompt, `"notesSwedish": "..." or null`)
}

func TestTranslateRecipeWithoutJSONFails(t *testing.T) {
	_, err := NewService(&fakeLLM{reply: "no"}, nil).TranslateRecipe(context.Background(), model.Recipe{ID: "x"}, "key")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestServiceConcurrentCalls(t *testing.T) {
	svc := NewService(&fakeLLM{reply: pancakesReply}, nil)

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.ExtractFromText(context.Background(), "x", "key")
			if err == nil {
				ids[i] = r.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestExtractionPromptListsVocabulary(t *testing.T) {
	assert.Contains(t, ExtractionPrompt, "tags from: "+strings.Join(model.TagKeys(), ", ")+"\n")
	assert.Contains(t, ExtractionPrompt, "IMPORTANT: Return ONLY valid JSON, no additional text or explanation.")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "extraction_failed", Outcome(&ExtractionFailedError{Cause: errors.New("x")}))
	assert.Equal(t, "no_text", Outcome(llm.ErrNoTextInResponse))
	assert.Equal(t, "http_error", Outcome(&transport.HTTPError{StatusCode: 500}))
	assert.Equal(t, "timeout", Outcome(transport.ErrTimeout))
	assert.Equal(t, "success", Outcome(nil))
}
