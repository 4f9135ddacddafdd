package astvalidation

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/goleak"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/introspection"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
	"github.com/wundergraph/gqlstatic/pkg/warden"
)

const testDefinition = `
directive @inaccessible on FIELD_DEFINITION | OBJECT

type Query {
	hero: Character
	droid(id: ID!): Droid
	secret: String @inaccessible
}

interface Character {
	name: String!
	friends: [Character]
}

type Human implements Character {
	name: String!
	friends: [Character]
	height: Float
}

type Droid implements Character {
	name: String!
	friends: [Character]
	primaryFunction: String
}
`

type testQuery struct {
	document *ast.QueryDocument
	schema   *ast.Schema
	filter   warden.Filter
	traced   []string
}

func (q *testQuery) Document() *ast.QueryDocument { return q.document }
func (q *testQuery) Schema() *ast.Schema          { return q.schema }
func (q *testQuery) Visibility() warden.Filter    { return q.filter }

func (q *testQuery) Trace(key string, _ map[string]interface{}, fn func()) {
	q.traced = append(q.traced, key)
	fn()
}

func mustSchema(t *testing.T, definition string) *ast.Schema {
	t.Helper()
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema", Input: definition})
	require.NoError(t, err)
	return schema
}

func mustQuery(t *testing.T, schema *ast.Schema, input string) *testQuery {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: input})
	require.NoError(t, err)
	return &testQuery{document: doc, schema: schema}
}

func messages(errs []operationreport.ExternalError) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Message)
	}
	return out
}

func assertMessages(t *testing.T, expected []string, result Result) {
	t.Helper()
	if diff := cmp.Diff(expected, messages(result.Errors)); diff != "" {
		t.Errorf("unexpected messages (-want +got):\n%s", diff)
	}
}

// fieldRecorder records the response key of every field it enters.
func fieldRecorder(name string, fields *[]string) Rule {
	return NodeHandlerRule(name, func(ctx *Context) NodeHandlers {
		return NodeHandlers{
			astvisitor.NodeKindField: func(node, _ astvisitor.Node) astvisitor.Action {
				*fields = append(*fields, node.Name())
				return astvisitor.Continue
			},
		}
	})
}

func TestValidator_Validate(t *testing.T) {
	schema := mustSchema(t, testDefinition)

	run := func(t *testing.T, input string, validate bool) Result {
		t.Helper()
		result, err := DefaultValidator().Validate(mustQuery(t, schema, input), validate)
		require.NoError(t, err)
		return result
	}

	t.Run("valid document yields the internal representation", func(t *testing.T) {
		result := run(t, `query Hero { hero { name ... on Droid { primaryFunction } } }`, true)

		assertMessages(t, []string{}, result)
		assert.True(t, result.Valid())
		assert.Equal(t, Valid, result.State())
		require.NotNil(t, result.IRep)
		require.Len(t, result.IRep.OperationDefinitions, 1)
		hero := result.IRep.Operation("Hero").Child("Query", "hero")
		require.NotNil(t, hero)
		assert.NotNil(t, hero.Child("Droid", "primaryFunction"))
		assert.Nil(t, hero.Child("Human", "primaryFunction"))
	})

	t.Run("errors discard the internal representation", func(t *testing.T) {
		result := run(t, `{ hero { name ghost } }`, true)

		assertMessages(t, []string{"Field 'ghost' doesn't exist on type 'Character'"}, result)
		assert.False(t, result.Valid())
		assert.Equal(t, Invalid, result.State())
		assert.Nil(t, result.IRep)
	})

	t.Run("messages carry location and path", func(t *testing.T) {
		result := run(t, "query Hero {\n  hero {\n    ... on Droid { ghost }\n  }\n}", true)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, "Field 'ghost' doesn't exist on type 'Droid'", result.Errors[0].Message)
		assert.Equal(t, []operationreport.Location{{Line: 3, Column: 20}}, result.Errors[0].Locations)
		assert.Equal(t, "query Hero.hero.... on Droid.ghost", result.Errors[0].Path.String())
	})

	t.Run("without validation rules are not run", func(t *testing.T) {
		result := run(t, `
			mutation { addHero { name } }
			{ hero { ghost ...Missing } }
			fragment F on Ghost { name }`, false)

		assertMessages(t, []string{}, result)
		require.NotNil(t, result.IRep)
		assert.Len(t, result.IRep.OperationDefinitions, 2)
		assert.Nil(t, result.IRep.OperationDefinitions[0].ReturnType)
	})

	t.Run("mutation without mutation root", func(t *testing.T) {
		result := run(t, `mutation { addHero(name: "R2") { name } }`, true)

		assertMessages(t, []string{"Schema is not configured for mutations"}, result)
		assert.Nil(t, result.IRep)
		assert.Equal(t, "mutation", result.Errors[0].Path.String())
	})

	t.Run("subscription without subscription root", func(t *testing.T) {
		result := run(t, `subscription OnHero { heroChanged { name } }`, true)

		assertMessages(t, []string{"Schema is not configured for subscriptions"}, result)
		assert.Nil(t, result.IRep)
	})

	t.Run("fragment on unknown type", func(t *testing.T) {
		var fields []string
		rules := append(DefaultRules(), fieldRecorder("Recorder", &fields))
		validator, err := NewValidator(rules...)
		require.NoError(t, err)

		result, err := validator.Validate(mustQuery(t, schema, `fragment F on Ghost { name }`), true)
		require.NoError(t, err)

		assertMessages(t, []string{"No such type Ghost, so it can't be a fragment condition"}, result)
		assert.Equal(t, "fragment F", result.Errors[0].Path.String())
		assert.Empty(t, fields)
		assert.Nil(t, result.IRep)
	})

	t.Run("inline fragment on unknown type", func(t *testing.T) {
		result := run(t, `{ hero { name ... on Ghost { ghost } } }`, true)

		assertMessages(t, []string{"No such type Ghost, so it can't be a fragment condition"}, result)
		assert.Equal(t, "query.hero.... on Ghost", result.Errors[0].Path.String())
	})

	t.Run("undefined fragment spread", func(t *testing.T) {
		result := run(t, `{ hero { ...Missing } }`, true)

		assertMessages(t, []string{"Fragment Missing was used, but not defined"}, result)
	})

	t.Run("hidden members do not exist", func(t *testing.T) {
		query := mustQuery(t, schema, `{ secret }`)
		query.filter = warden.HiddenByDirective("inaccessible")

		result, err := DefaultValidator().Validate(query, true)
		require.NoError(t, err)
		assertMessages(t, []string{"Field 'secret' doesn't exist on type 'Query'"}, result)

		query = mustQuery(t, schema, `{ secret }`)
		result, err = DefaultValidator().Validate(query, true)
		require.NoError(t, err)
		assertMessages(t, []string{}, result)
	})

	t.Run("appropriate selections", func(t *testing.T) {
		result := run(t, `
			{
				hero { name { first } ...Names }
				droid(id: 1)
			}
			fragment Names on Character { name { first } }`, true)

		assertMessages(t, []string{
			"Selections can't be made on scalars (field 'name' returns String but has selections [first])",
			"Selections can't be made on scalars (field 'name' returns String but has selections [first])",
			"Field must have selections (field 'droid' returns Droid but has no selections. Did you mean 'droid { ... }'?)",
		}, result)
		assert.Equal(t, "query.hero.name", result.Errors[0].Path.String())
		assert.Equal(t, 3, result.Errors[0].Locations[0].Line)
		assert.Equal(t, 6, result.Errors[1].Locations[0].Line)
	})

	t.Run("introspection query", func(t *testing.T) {
		query := mustQuery(t, schema, introspection.Query)
		result, err := DefaultValidator().Validate(query, true)
		require.NoError(t, err)

		assertMessages(t, []string{}, result)
		require.NotNil(t, result.IRep)
		require.Len(t, result.IRep.OperationDefinitions, 1)
		assert.Equal(t, "IntrospectionQuery", result.IRep.OperationDefinitions[0].Name)
		assert.Equal(t, []string{"validate"}, query.traced)

		types := result.IRep.OperationDefinitions[0].Child("Query", "__schema").Child("__Schema", "types")
		require.NotNil(t, types)
		assert.NotNil(t, types.Child("__Type", "possibleTypes"))
	})

	t.Run("fields sharing a response key must select the same field", func(t *testing.T) {
		result := run(t, `{ hero { name: friends { name } name } }`, true)

		assertMessages(t, []string{
			"Fields 'name' conflict because 'friends' and 'name' are different fields. Use different aliases on the fields to fetch both if this was intentional.",
		}, result)
		assert.Equal(t, []operationreport.Location{{Line: 1, Column: 33}}, result.Errors[0].Locations)
		assert.Equal(t, "query.hero.name", result.Errors[0].Path.String())

		result = run(t, `{ hero { name: friends { name } name } }`, false)
		require.NotNil(t, result.IRep)
		assert.Len(t, result.IRep.Operation("").Child("Query", "hero").Children("Droid"), 2)
	})

	t.Run("fields sharing a response key must have the same arguments", func(t *testing.T) {
		result := run(t, `{ droid(id: 1) { name } droid(id: 2) { name } }`, true)
		assertMessages(t, []string{
			"Fields 'droid' conflict because they have differing arguments. Use different aliases on the fields to fetch both if this was intentional.",
		}, result)

		result = run(t, `{ droid(id: 1) { name } droid(id: 1) { friends { name } } }`, true)
		assertMessages(t, []string{}, result)
	})

	t.Run("fields on different types must return the same shape", func(t *testing.T) {
		result := run(t, `{ hero { ... on Human { x: height } ... on Droid { x: primaryFunction } } }`, true)
		assertMessages(t, []string{
			"Fields 'x' conflict because they return conflicting types Float and String. Use different aliases on the fields to fetch both if this was intentional.",
		}, result)

		result = run(t, `{ hero { ... on Human { x: name } ... on Droid { x: name } friends { name } } }`, true)
		assertMessages(t, []string{}, result)
	})

	t.Run("repeated fragment spreads report once", func(t *testing.T) {
		result := run(t, `
			{ hero { ...A ...A ...B } }
			fragment A on Character { ...C }
			fragment B on Character { ...C }
			fragment C on Character { name ghost }`, true)

		assertMessages(t, []string{"Field 'ghost' doesn't exist on type 'Character'"}, result)
	})
}

func TestValidator_Skip(t *testing.T) {
	schema := mustSchema(t, testDefinition)

	var before, after []string
	skipHero := NodeHandlerRule("SkipHero", func(ctx *Context) NodeHandlers {
		return NodeHandlers{
			astvisitor.NodeKindField: func(node, _ astvisitor.Node) astvisitor.Action {
				if node.Name() == "hero" {
					return astvisitor.Skip
				}
				return astvisitor.Continue
			},
		}
	})
	validator, err := NewValidator(fieldRecorder("Before", &before), skipHero, fieldRecorder("After", &after))
	require.NoError(t, err)

	result, err := validator.Validate(mustQuery(t, schema, `{ hero { name friends { name } } droid(id: 1) { name } }`), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"hero", "droid", "name"}, before)
	assert.Equal(t, []string{"hero", "droid", "name"}, after)
	require.NotNil(t, result.IRep)
	hero := result.IRep.Operation("").Child("Query", "hero")
	require.NotNil(t, hero)
	assert.Empty(t, hero.Children("Human"))
	assert.NotNil(t, result.IRep.Operation("").Child("Query", "droid").Child("Droid", "name"))
}

func TestValidator_CallIsolation(t *testing.T) {
	schema := mustSchema(t, testDefinition)

	calls := 0
	counting := FullTraversalRule("Counting", func(ctx *Context) error {
		calls++
		assert.Empty(t, ctx.Errors())
		enter, _ := ctx.Walker().Callbacks(astvisitor.NodeKindField)
		assert.Equal(t, 2, enter)
		return nil
	})
	validator, err := NewValidator(FieldsAreDefinedOnType(), counting)
	require.NoError(t, err)

	invalid, err := validator.Validate(mustQuery(t, schema, `{ ghost }`), true)
	require.NoError(t, err)
	valid, err := validator.Validate(mustQuery(t, schema, `{ hero { name } }`), true)
	require.NoError(t, err)

	assertMessages(t, []string{"Field 'ghost' doesn't exist on type 'Query'"}, invalid)
	assertMessages(t, []string{}, valid)
	assert.Nil(t, invalid.IRep)
	require.NotNil(t, valid.IRep)
	assert.Equal(t, 2, calls)
}

func TestValidator_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	schema := mustSchema(t, testDefinition)
	validator := DefaultValidator()

	var wg sync.WaitGroup
	results := make([]Result, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := `{ hero { name } }`
			if i%2 == 1 {
				input = fmt.Sprintf(`{ hero { ghost%d } }`, i)
			}
			doc, err := parser.ParseQuery(&ast.Source{Input: input})
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = validator.Validate(&testQuery{document: doc, schema: schema}, true)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			assertMessages(t, []string{}, results[i])
			assert.NotNil(t, results[i].IRep)
			continue
		}
		assertMessages(t, []string{fmt.Sprintf("Field 'ghost%d' doesn't exist on type 'Character'", i)}, results[i])
		assert.Nil(t, results[i].IRep)
	}
}

func TestValidator_ProgrammingErrors(t *testing.T) {
	schema := mustSchema(t, testDefinition)

	t.Run("malformed rules", func(t *testing.T) {
		_, err := NewValidator()
		assert.Equal(t, ErrNoRules, err)

		_, err = NewValidator(Rule{})
		assert.Error(t, err)

		_, err = NewValidator(NodeHandlerRule("", func(ctx *Context) NodeHandlers { return nil }))
		assert.Error(t, err)

		_, err = NewValidator(NodeHandlerRule("Nil", nil))
		assert.Error(t, err)

		_, err = NewValidator(FullTraversalRule("Nil", nil))
		assert.Error(t, err)

		_, err = NewValidator(FragmentTypesExist(), FragmentTypesExist())
		assert.Error(t, err)
	})

	t.Run("handler for an unknown node kind", func(t *testing.T) {
		validator, err := NewValidator(NodeHandlerRule("Unknown", func(ctx *Context) NodeHandlers {
			return NodeHandlers{
				astvisitor.NodeKindUnknown: func(node, _ astvisitor.Node) astvisitor.Action { return astvisitor.Continue },
			}
		}))
		require.NoError(t, err)

		_, err = validator.Validate(mustQuery(t, schema, `{ hero { name } }`), true)
		assert.EqualError(t, err, "rule Unknown declares handlers for unknown node kinds")

		result, err := validator.Validate(mustQuery(t, schema, `{ hero { name } }`), false)
		require.NoError(t, err)
		assert.NotNil(t, result.IRep)
	})

	t.Run("every failing rule is reported", func(t *testing.T) {
		first := errors.New("first")
		second := errors.New("second")
		validator, err := NewValidator(
			FullTraversalRule("First", func(ctx *Context) error { return first }),
			FragmentTypesExist(),
			FullTraversalRule("Second", func(ctx *Context) error { return second }),
		)
		require.NoError(t, err)

		_, err = validator.Validate(mustQuery(t, schema, `{ hero { name } }`), true)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
		assert.EqualError(t, err, "rule First: first\nrule Second: second")
	})

	t.Run("registering after the walk", func(t *testing.T) {
		var captured *Context
		validator, err := NewValidator(FullTraversalRule("Capture", func(ctx *Context) error {
			captured = ctx
			return nil
		}))
		require.NoError(t, err)

		_, err = validator.Validate(mustQuery(t, schema, `{ hero { name } }`), true)
		require.NoError(t, err)
		require.NotNil(t, captured)
		assert.True(t, captured.Sealed())
		assert.Equal(t, ErrContextSealed, captured.Register(astvisitor.NodeKindField, func(node, _ astvisitor.Node) astvisitor.Action { return astvisitor.Continue }))
		assert.Equal(t, ErrContextSealed, captured.AddPostTraversalHandler(nil))

		captured.AddError(operationreport.ErrMutationsNotConfigured())
		assert.Empty(t, captured.Errors())
	})

	t.Run("nil query and document", func(t *testing.T) {
		_, err := DefaultValidator().Validate(nil, true)
		assert.Equal(t, ErrQueryMustNotBeNil, err)

		_, err = DefaultValidator().Validate(&testQuery{schema: schema}, true)
		assert.Equal(t, ErrDocumentMustNotBeNil, err)
	})
}

func TestRulesByName(t *testing.T) {
	rules, err := RulesByName("MutationRootExists", "FragmentTypesExist")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "MutationRootExists", rules[0].Name())
	assert.Equal(t, NodeHandlerRuleKind, rules[0].Kind())

	_, err = RulesByName("Ghost")
	assert.Error(t, err)

	assert.Equal(t, []string{
		"FragmentTypesExist",
		"MutationRootExists",
		"SubscriptionRootExists",
		"FragmentSpreadsAreDefined",
		"FieldsAreDefinedOnType",
		"FieldsHaveAppropriateSelections",
		"FieldSelectionMerging",
	}, RuleNames())
	assert.Equal(t, RuleNames(), DefaultValidator().Rules())
	assert.Equal(t, FullTraversalRuleKind, FieldsHaveAppropriateSelections().Kind())
}

func TestResult_State(t *testing.T) {
	assert.Equal(t, UnknownState, Result{}.State())
	assert.Equal(t, "Unknown", Result{}.State().String())
	assert.Equal(t, "Valid", Valid.String())
	assert.Equal(t, "Invalid", Invalid.String())
}
