package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posmatch/backend/internal/domain"
)

// run executes the CLI offline with an in-memory cache
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSMATCH_CACHE_TYPE", "memory")
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--offline"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	t.Run("prints text result", func(t *testing.T) {
		out, err := run(t, "", "recommend", "I need a fast checkout for my coffee shop")
		require.NoError(t, err)

		assert.Contains(t, out, `Query: "I need a fast checkout for my coffee shop"`)
		assert.Contains(t, out, "tier: local-query-match")
		assert.Contains(t, out, "[mini3]")
	})

	t.Run("prints json result", func(t *testing.T) {
		out, err := run(t, "", "recommend", "--json", "coffee", "shop")
		require.NoError(t, err)

		var result domain.RecommendationResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "coffee shop", result.Query)
		assert.Contains(t, result.ProductIdentifiers(), "mini3")
	})

	t.Run("requires a query", func(t *testing.T) {
		_, err := run(t, "", "recommend")
		assert.Error(t, err)
	})
}

func TestCatalogCommand(t *testing.T) {
	t.Run("lists products", func(t *testing.T) {
		out, err := run(t, "", "catalog")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Greater(t, len(lines), 1)
		assert.Contains(t, lines[0], "IDENTIFIER")
		assert.Contains(t, lines[1], "station-duo2")
	})

	t.Run("prints projection", func(t *testing.T) {
		out, err := run(t, "", "catalog", "--projection")
		require.NoError(t, err)

		var projection []domain.ProjectionEntry
		require.NoError(t, json.Unmarshal([]byte(out), &projection))
		require.NotEmpty(t, projection)
		assert.Equal(t, "station-duo2", projection[0].Identifier)
	})
}

func TestInteractiveCommand(t *testing.T) {
	t.Run("only the final line is resolved", func(t *testing.T) {
		out, err := run(t, "coff\ncoffee\ncoffee shop\n", "interactive", "--debounce", "50ms")
		require.NoError(t, err)

		assert.Contains(t, out, `[loading] "coffee shop"`)
		assert.NotContains(t, out, `[loading] "coff"`)
		assert.Contains(t, out, "[results]")
		assert.Contains(t, out, "[mini3]")
	})

	t.Run("blank line returns to idle", func(t *testing.T) {
		out, err := run(t, "coffee shop\n\n", "interactive", "--debounce", "50ms")
		require.NoError(t, err)

		assert.Contains(t, out, "[idle]")
		assert.NotContains(t, out, "[results]")
	})

	t.Run("quit stops reading", func(t *testing.T) {
		out, err := run(t, "/quit\ncoffee shop\n", "interactive", "--debounce", "50ms")
		require.NoError(t, err)

		assert.NotContains(t, out, "[loading]")
	})
}
