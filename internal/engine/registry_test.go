package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownEngines(t *testing.T) {
	for _, name := range []string{"gpt-4o", "gpt-4o-mini", "o3-mini", "gemini-1.5-flash", "gemini-1.5-flash-8b", "sonar"} {
		profile, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, profile.Name)
		assert.NotEmpty(t, profile.BaseURL)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	profile, err := Resolve("  GPT-4o ")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", profile.Name)
}

func TestResolveUnknownEngine(t *testing.T) {
	_, err := Resolve("not-a-real-model")
	require.Error(t, err)

	var unknownErr *UnknownEngineError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "not-a-real-model", unknownErr.Name)
}

func TestCostFormula(t *testing.T) {
	gpt4o, err := Resolve("gpt-4o")
	require.NoError(t, err)

	// 1000 input + 1000 output tokens at 0.27/1.5 per 1K
	assert.InDelta(t, 1.77, gpt4o.Cost(1000, 1000, 0), 1e-9)

	// a single image at 85*1.5/1000
	assert.InDelta(t, 0.1275, gpt4o.Cost(0, 0, 1), 1e-9)
}

func TestSonarPricing(t *testing.T) {
	sonar, err := Resolve("sonar")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, sonar.Cost(1000, 1000, 0), 1e-9)
	assert.Zero(t, sonar.ImagePrice)
}

func TestMetisBotCostsNothing(t *testing.T) {
	bot, err := Resolve("metis-bot")
	require.NoError(t, err)
	assert.Zero(t, bot.Cost(5000, 5000, 3))
}

func TestNamesAreSortedAndComplete(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.Contains(t, names, "grok-2")
}
