package promptengine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"two markers", "Write about {topic} for {language}", []string{"topic", "language"}},
		{"repeated marker collapses", "{topic} and again {topic}, then {tone}", []string{"topic", "tone"}},
		{"no markers", "A self-contained prompt with no placeholders.", []string{}},
		{"empty input", "", []string{}},
		{"internal whitespace trimmed", "Write about { topic } today", []string{"topic"}},
		{"order follows first appearance", "{b} {a} {b} {c} {a}", []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariables(tt.prompt))
		})
	}
}

func TestReplaceVariables(t *testing.T) {
	t.Run("replaces all occurrences", func(t *testing.T) {
		got := ReplaceVariables("{name} meets {name} about {topic}", map[string]string{
			"name":  "Ada",
			"topic": "candles",
		})
		assert.Equal(t, "Ada meets Ada about candles", got)
	})

	t.Run("unresolved markers stay untouched", func(t *testing.T) {
		assert.Equal(t, "Hi {name}", ReplaceVariables("Hi {name}", map[string]string{}))
	})

	t.Run("empty value substitutes to empty string", func(t *testing.T) {
		assert.Equal(t, "Hi ", ReplaceVariables("Hi {name}", map[string]string{"name": ""}))
	})

	t.Run("markers with inner spaces are matched", func(t *testing.T) {
		assert.Equal(t, "Hi Ada", ReplaceVariables("Hi { name }", map[string]string{"name": "Ada"}))
	})

	t.Run("values containing markers substitute deterministically", func(t *testing.T) {
		// "language" sorts before "topic", so it is applied to the prompt
		// first and never expands the marker the topic value injects.
		values := map[string]string{
			"topic":    "see {language}",
			"language": "en",
		}
		for i := 0; i < 20; i++ {
			assert.Equal(t, "see {language}", ReplaceVariables("{topic}", values))
		}
	})
}

func TestGetVariable(t *testing.T) {
	values := map[string]string{"topic": "grief"}
	assert.Equal(t, "grief", GetVariable(values, "topic"))
	assert.Equal(t, "", GetVariable(values, "missing"))
	assert.Equal(t, "", GetVariable(nil, "anything"))
}

func TestParseVariables_MixedShapes(t *testing.T) {
	raw := json.RawMessage(`[
		"topic",
		{"name": "tone", "label": "Tone of voice", "required": false, "default": "warm"},
		{"name": "audience", "label": "Audience"}
	]`)

	vars, err := ParseVariables(raw)
	require.NoError(t, err)
	require.Len(t, vars, 3)

	assert.True(t, vars[0].Simple)
	assert.Equal(t, "topic", vars[0].Name)
	assert.True(t, vars[0].IsRequired(), "bare topic is always required")

	assert.False(t, vars[1].Simple)
	assert.Equal(t, "warm", vars[1].Default)
	assert.False(t, vars[1].IsRequired(), "explicit required:false opts out")

	assert.True(t, vars[2].IsRequired(), "descriptors are required by default")
}

func TestParseVariables_EmptyAndNull(t *testing.T) {
	vars, err := ParseVariables(nil)
	require.NoError(t, err)
	assert.Empty(t, vars)

	vars, err = ParseVariables(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestIsRequired_BareNames(t *testing.T) {
	assert.True(t, Variable{Name: "topic", Simple: true}.IsRequired())
	assert.False(t, Variable{Name: "tone", Simple: true}.IsRequired(), "other bare names are optional")
}

func TestValidateRequiredVariables(t *testing.T) {
	vars := []Variable{
		{Name: "topic", Simple: true},
		{Name: "tone", Simple: true},
		{Name: "audience", Required: true},
		{Name: "style", Required: false},
	}

	t.Run("all required present", func(t *testing.T) {
		ok, missing := ValidateRequiredVariables(vars, map[string]string{
			"topic":    "grief",
			"audience": "readers",
		})
		assert.True(t, ok)
		assert.Empty(t, missing)
	})

	t.Run("whitespace-only counts as missing", func(t *testing.T) {
		ok, missing := ValidateRequiredVariables(vars, map[string]string{
			"topic":    "   ",
			"audience": "readers",
		})
		assert.False(t, ok)
		assert.Equal(t, []string{"topic"}, missing)
	})

	t.Run("missing listed in declaration order", func(t *testing.T) {
		ok, missing := ValidateRequiredVariables(vars, map[string]string{})
		assert.False(t, ok)
		assert.Equal(t, []string{"topic", "audience"}, missing)
	})
}

func TestValidateTemplate(t *testing.T) {
	longPrompt := strings.Repeat("Write a thoughtful article. ", 5)

	t.Run("valid template without placeholders", func(t *testing.T) {
		errs, _ := ValidateTemplate("Weekly article", longPrompt, nil)
		assert.Empty(t, errs)
	})

	t.Run("name too short", func(t *testing.T) {
		errs, _ := ValidateTemplate("ab", longPrompt, nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "name too short")
	})

	t.Run("name too long", func(t *testing.T) {
		errs, _ := ValidateTemplate(strings.Repeat("x", 101), longPrompt, nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "name too long")
	})

	t.Run("prompt too short", func(t *testing.T) {
		errs, _ := ValidateTemplate("Weekly article", strings.Repeat("x", 49), nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "prompt too short")
	})

	t.Run("both violations reported together", func(t *testing.T) {
		errs, _ := ValidateTemplate("ab", "short", nil)
		assert.Len(t, errs, 2)
	})

	t.Run("multibyte name measured in characters", func(t *testing.T) {
		errs, _ := ValidateTemplate("日本", longPrompt, nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "name too short")

		errs, _ = ValidateTemplate(strings.Repeat("ä", 60), longPrompt, nil)
		assert.Empty(t, errs, "60 umlauts are 60 characters, not 120")
	})

	t.Run("multibyte prompt measured in characters", func(t *testing.T) {
		errs, _ := ValidateTemplate("Weekly article", strings.Repeat("ä", 50), nil)
		assert.Empty(t, errs)

		errs, _ = ValidateTemplate("Weekly article", strings.Repeat("ä", 49), nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "prompt too short")
	})

	t.Run("name trimmed before measuring", func(t *testing.T) {
		errs, _ := ValidateTemplate("  ab  ", longPrompt, nil)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "name too short")
	})

	t.Run("undeclared placeholder warns but stays valid", func(t *testing.T) {
		errs, warnings := ValidateTemplate("Weekly article", longPrompt+" {mystery}", nil)
		assert.Empty(t, errs)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "mystery")
	})

	t.Run("unused declared variable warns but stays valid", func(t *testing.T) {
		errs, warnings := ValidateTemplate("Weekly article", longPrompt, []Variable{{Name: "tone", Simple: true}})
		assert.Empty(t, errs)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "tone")
	})
}

func TestBuildSimpleModeVariables(t *testing.T) {
	t.Run("topic and language always set", func(t *testing.T) {
		values := BuildSimpleModeVariables("grief", "", "", "")
		assert.Equal(t, "grief", values[KeyTopic])
		assert.Equal(t, "en", values[KeyLanguage])
	})

	t.Run("cta keys exist even without a candle type", func(t *testing.T) {
		values := BuildSimpleModeVariables("grief", "", "en", "")
		cta, ok := values[KeyCTA]
		assert.True(t, ok)
		assert.Equal(t, "", cta)
		note, ok := values[KeyCTANote]
		assert.True(t, ok)
		assert.Equal(t, "", note)
	})

	t.Run("candle type attaches cta and marker", func(t *testing.T) {
		values := BuildSimpleModeVariables("grief", "memory", "en", "")
		assert.Contains(t, values[KeyCTA], "memory candle")
		assert.NotEmpty(t, values[KeyCTANote])
	})

	t.Run("cta follows the language", func(t *testing.T) {
		en := BuildSimpleModeVariables("grief", "support", "en", "")
		de := BuildSimpleModeVariables("grief", "support", "de", "")
		assert.NotEqual(t, en[KeyCTA], de[KeyCTA])
		assert.NotEmpty(t, de[KeyCTA])
	})

	t.Run("every type has a cta in both languages", func(t *testing.T) {
		for _, ct := range []string{"calm", "support", "memory", "gratitude", "focus"} {
			for _, lang := range []string{"en", "de"} {
				values := BuildSimpleModeVariables("t", ct, lang, "")
				assert.NotEmpty(t, values[KeyCTA], "%s/%s", ct, lang)
			}
		}
	})

	t.Run("category name passes through", func(t *testing.T) {
		values := BuildSimpleModeVariables("grief", "", "en", "Wellbeing")
		assert.Equal(t, "Wellbeing", values[KeyCategoryName])
	})
}
