package jobs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedArticle_JSON(t *testing.T) {
	raw := `{"title": "Lighting a memory candle", "excerpt": "Why we light candles.", "content": "Body text."}`
	article, err := ParseGeneratedArticle(raw)
	require.NoError(t, err)
	assert.Equal(t, "Lighting a memory candle", article.Title)
	assert.Equal(t, "Why we light candles.", article.Excerpt)
	assert.Equal(t, "Body text.", article.Content)
}

func TestParseGeneratedArticle_CodeFencedJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"T\", \"excerpt\": \"E\", \"content\": \"C\"}\n```"
	article, err := ParseGeneratedArticle(raw)
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
}

func TestParseGeneratedArticle_PlainTextFallback(t *testing.T) {
	raw := "# A quiet minute\n\nSome markdown body.\nMore text."
	article, err := ParseGeneratedArticle(raw)
	require.NoError(t, err)
	assert.Equal(t, "A quiet minute", article.Title)
	assert.Contains(t, article.Content, "Some markdown body.")
}

func TestParseGeneratedArticle_Unusable(t *testing.T) {
	_, err := ParseGeneratedArticle("")
	assert.Error(t, err)

	_, err = ParseGeneratedArticle("just a single line with no body")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "lighting-a-memory-candle", Slugify("Lighting a Memory Candle"))
	assert.Equal(t, "a-b-c", Slugify("  a/b&c!  "))
	assert.LessOrEqual(t, len(Slugify(strings.Repeat("word ", 40))), 80)
	// Titles with no slug-safe characters still yield something usable.
	assert.True(t, strings.HasPrefix(Slugify("???"), "article-"))
}
