package operationreport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestExternalError_MarshalJSON(t *testing.T) {
	err := ErrFragmentConditionTypeUndefined("Ghost").
		At(&ast.Position{Line: 3, Column: 4}, ast.Path{ast.PathName("fragment F")})

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"message":"No such type Ghost, so it can't be a fragment condition","locations":[{"line":3,"column":4}],"path":["fragment F"]}`, string(data))

	data, marshalErr = json.Marshal(ErrMutationsNotConfigured())
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"message":"Schema is not configured for mutations"}`, string(data))
}

func TestExternalError_At(t *testing.T) {
	path := ast.Path{ast.PathName("query"), ast.PathName("hero")}
	err := ErrFieldUndefinedOnType("nope", "Droid").At(&ast.Position{Line: 1, Column: 9}, path)
	path[1] = ast.PathName("changed")

	assert.Equal(t, ast.Path{ast.PathName("query"), ast.PathName("hero")}, err.Path)
	assert.Equal(t, []Location{{Line: 1, Column: 9}}, err.Locations)
	assert.Equal(t, "Field 'nope' doesn't exist on type 'Droid'", err.Error())

	unlocated := ErrMutationsNotConfigured().At(nil, nil)
	assert.Nil(t, unlocated.Locations)
	assert.Nil(t, unlocated.Path)
}

func TestExternalError_WithExtension(t *testing.T) {
	original := ErrFragmentSpreadUndefined("Missing")
	extended := original.WithExtension("code", "FRAGMENT_UNDEFINED")

	assert.Nil(t, original.Extensions)
	assert.Equal(t, map[string]interface{}{"code": "FRAGMENT_UNDEFINED"}, extended.Extensions)
	assert.Equal(t, "Fragment Missing was used, but not defined", extended.Message)
}

func TestGQLErrors(t *testing.T) {
	assert.Nil(t, GQLErrors(nil))

	errs := GQLErrors([]ExternalError{
		ErrSelectionsOnLeafField("name", "String", ast.Scalar, []string{"first", "last"}).At(&ast.Position{Line: 2, Column: 5}, ast.Path{ast.PathName("query"), ast.PathName("name")}),
		ErrMissingSelectionsOnCompositeField("hero", "Character"),
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "Selections can't be made on scalars (field 'name' returns String but has selections [first, last])", errs[0].Message)
	assert.Equal(t, 2, errs[0].Locations[0].Line)
	assert.Equal(t, ast.Path{ast.PathName("query"), ast.PathName("name")}, errs[0].Path)
	assert.Equal(t, "Field must have selections (field 'hero' returns Character but has no selections. Did you mean 'hero { ... }'?)", errs[1].Message)
}
