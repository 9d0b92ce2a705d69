package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStrategy, s)

	s, err = ParseStrategy("kyu_3_workout")
	require.NoError(t, err)
	assert.Equal(t, Strategy("kyu_3_workout"), s)

	_, err = ParseStrategy("speedrun")
	var use *UnknownStrategyError
	require.ErrorAs(t, err, &use)
	assert.Contains(t, err.Error(), "reference_workout")
}

func TestStrategiesOrdered(t *testing.T) {
	t.Parallel()

	require.Len(t, Strategies, 14)
	assert.Equal(t, DefaultStrategy, Strategies[0].Name)
	seen := map[Strategy]bool{}
	for _, s := range Strategies {
		assert.False(t, seen[s.Name], "duplicate strategy %s", s.Name)
		assert.NotEmpty(t, s.Description)
		seen[s.Name] = true
	}
}

func TestLookupLanguage(t *testing.T) {
	t.Parallel()

	lang, err := LookupLanguage("Ruby")
	require.NoError(t, err)
	assert.Equal(t, "kata.rb", lang.CodeFileName())
	assert.Equal(t, "#", lang.CommentPrefix)

	_, err = LookupLanguage("cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "javascript")

	assert.Equal(t, []string{"coffeescript", "javascript", "python", "ruby"}, LanguageNames())
}
