package graphql

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	fileSimpleHeroQuery      = "simple_hero.query"
	fileFragmentsQuery       = "fragments.query"
	fileInvalidQuery         = "invalid.query"
	fileCreateReviewMutation = "create_review.mutation"
	fileSecretBackstoryQuery = "secret_backstory.query"
)

func starwarsSchema(t *testing.T) *Schema {
	t.Helper()
	schemaBytes, err := os.ReadFile(filepath.Join("testdata", "star_wars.graphql"))
	require.NoError(t, err)

	schema, err := NewSchemaFromString(string(schemaBytes))
	require.NoError(t, err)

	return schema
}

func loadStarWarsQuery(t *testing.T, fileName string) string {
	t.Helper()
	query, err := os.ReadFile(filepath.Join("testdata", "queries", fileName))
	require.NoError(t, err)
	return string(query)
}
