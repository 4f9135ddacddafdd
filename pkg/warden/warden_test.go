package warden

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const testSchema = `
directive @inaccessible on OBJECT | FIELD_DEFINITION | INTERFACE | UNION

type Query {
	hero: Character
	secret: Vault @inaccessible
	vault: Vault
	search: SearchResult
}

interface Character {
	name: String!
}

type Human implements Character {
	name: String!
	height: Float
}

type Droid implements Character {
	name: String!
	primaryFunction: String
	serial: String @inaccessible
}

type Vault @inaccessible {
	gold: Int
}

union SearchResult = Human | Droid | Vault
`

func loadSchema(t *testing.T, sdl string) *ast.Schema {
	t.Helper()
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	return schema
}

func TestWarden(t *testing.T) {
	schema := loadSchema(t, testSchema)

	t.Run("GetType", func(t *testing.T) {
		w := New(schema, nil)
		assert.NotNil(t, w.GetType("Droid"))
		assert.NotNil(t, w.GetType("Vault"))
		assert.NotNil(t, w.GetType("String"))
		assert.NotNil(t, w.GetType("__Type"))
		assert.Nil(t, w.GetType("Ghost"))
	})

	t.Run("GetType respects filter", func(t *testing.T) {
		w := New(schema, HiddenByDirective("inaccessible"))
		assert.NotNil(t, w.GetType("Droid"))
		assert.Nil(t, w.GetType("Vault"))
	})

	t.Run("RootTypeForOperation", func(t *testing.T) {
		w := New(schema, nil)
		query := w.RootTypeForOperation(ast.Query)
		require.NotNil(t, query)
		assert.Equal(t, "Query", query.Name)
		assert.Nil(t, w.RootTypeForOperation(ast.Mutation))
		assert.Nil(t, w.RootTypeForOperation(ast.Subscription))
	})

	t.Run("root type hidden by filter", func(t *testing.T) {
		w := New(schema, FilterFuncs{Type: func(def *ast.Definition) bool {
			return def.Name != "Query"
		}})
		assert.Nil(t, w.RootTypeForOperation(ast.Query))
	})

	t.Run("GetField", func(t *testing.T) {
		w := New(schema, HiddenByDirective("inaccessible"))
		droid := w.GetType("Droid")
		require.NotNil(t, droid)

		assert.NotNil(t, w.GetField(droid, "primaryFunction"))
		assert.Nil(t, w.GetField(droid, "serial"))
		assert.Nil(t, w.GetField(droid, "height"))

		typename := w.GetField(droid, "__typename")
		require.NotNil(t, typename)
		assert.Equal(t, "String!", typename.Type.String())

		query := w.GetType("Query")
		assert.Nil(t, w.GetField(query, "secret"))
		assert.Nil(t, w.GetField(query, "vault"), "field returning a hidden type must be hidden")
		assert.NotNil(t, w.GetField(query, "__schema"))
		assert.NotNil(t, w.GetField(query, "__type"))
		assert.Nil(t, w.GetField(droid, "__schema"))
		assert.Nil(t, w.GetField(nil, "name"))
	})

	t.Run("Fields", func(t *testing.T) {
		w := New(schema, HiddenByDirective("inaccessible"))
		var names []string
		for _, field := range w.Fields(w.GetType("Droid")) {
			names = append(names, field.Name)
		}
		assert.Equal(t, []string{"name", "primaryFunction"}, names)
	})

	t.Run("PossibleTypes", func(t *testing.T) {
		w := New(schema, HiddenByDirective("inaccessible"))
		names := func(defs []*ast.Definition) []string {
			out := make([]string, 0, len(defs))
			for _, def := range defs {
				out = append(out, def.Name)
			}
			return out
		}
		assert.ElementsMatch(t, []string{"Human", "Droid"}, names(w.PossibleTypes(w.GetType("Character"))))
		assert.ElementsMatch(t, []string{"Human", "Droid"}, names(w.PossibleTypes(w.GetType("SearchResult"))))
		assert.Equal(t, []string{"Human"}, names(w.PossibleTypes(w.GetType("Human"))))
		assert.Empty(t, w.PossibleTypes(w.GetType("String")))
	})

	t.Run("lookups are memoized", func(t *testing.T) {
		calls := 0
		w := New(schema, FilterFuncs{Type: func(def *ast.Definition) bool {
			if def.Name == "Droid" {
				calls++
			}
			return true
		}})
		w.GetType("Droid")
		w.GetType("Droid")
		w.GetType("Droid")
		assert.Equal(t, 1, calls)
	})

	t.Run("All", func(t *testing.T) {
		noHeight := FilterFuncs{Field: func(owner *ast.Definition, field *ast.FieldDefinition) bool {
			return field.Name != "height"
		}}
		w := New(schema, All(noHeight, HiddenByDirective("inaccessible")))
		assert.Nil(t, w.GetType("Vault"))
		assert.Nil(t, w.GetField(w.GetType("Human"), "height"))
		assert.Nil(t, w.GetField(w.GetType("Droid"), "serial"))
		assert.NotNil(t, w.GetField(w.GetType("Droid"), "primaryFunction"))

		w = New(schema, All())
		assert.NotNil(t, w.GetType("Vault"))
	})
}
