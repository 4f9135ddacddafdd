package graphql

import (
	"github.com/cespare/xxhash/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/wundergraph/gqlstatic/pkg/astvalidation"
	"github.com/wundergraph/gqlstatic/pkg/warden"
)

var defaultValidator = astvalidation.DefaultValidator()

// Query is a parsed query document bound to the schema it is validated against.
// It satisfies astvalidation.Query.
type Query struct {
	schema     *Schema
	document   *ast.QueryDocument
	content    string
	sourceName string
	hash       uint64
	tracer     Tracer
	visibility warden.Filter
	cache      *DocumentCache
}

type Option func(q *Query)

// WithTracer instruments validation calls of the query.
func WithTracer(tracer Tracer) Option {
	return func(q *Query) {
		q.tracer = tracer
	}
}

// WithVisibility hides the schema members rejected by filter from validation.
func WithVisibility(filter warden.Filter) Option {
	return func(q *Query) {
		q.visibility = filter
	}
}

// WithSourceName names the query source in parse errors, e.g. the file it was read from.
func WithSourceName(name string) Option {
	return func(q *Query) {
		q.sourceName = name
	}
}

// WithDocumentCache reuses documents parsed from the same query text and source name.
func WithDocumentCache(cache *DocumentCache) Option {
	return func(q *Query) {
		q.cache = cache
	}
}

// NewQuery parses query. Syntax errors are returned as *gqlerror.Error.
func NewQuery(schema *Schema, query string, opts ...Option) (*Query, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	q := &Query{
		schema:     schema,
		content:    query,
		sourceName: "query",
		tracer:     NoopTracer{},
	}
	for _, opt := range opts {
		opt(q)
	}
	q.hash = xxhash.Sum64String(query)
	key := documentKey{sourceName: q.sourceName, hash: q.hash}
	if document, ok := q.cache.get(key); ok {
		q.document = document
		return q, nil
	}
	document, err := parser.ParseQuery(&ast.Source{Name: q.sourceName, Input: query})
	if err != nil {
		return nil, err
	}
	q.cache.add(key, document)
	q.document = document
	return q, nil
}

func (q *Query) Document() *ast.QueryDocument {
	return q.document
}

func (q *Query) Schema() *ast.Schema {
	return q.schema.schema
}

func (q *Query) Visibility() warden.Filter {
	return q.visibility
}

// Hash identifies the query text.
func (q *Query) Hash() uint64 {
	return q.hash
}

func (q *Query) Content() string {
	return q.content
}

func (q *Query) SourceName() string {
	return q.sourceName
}

func (q *Query) Trace(key string, data map[string]interface{}, fn func()) {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["query_hash"] = q.hash
	payload["source"] = q.sourceName
	q.tracer.Trace(key, payload, fn)
}

// Validate runs the default rules on q.
func (q *Query) Validate() (ValidationResult, error) {
	return q.ValidateWith(defaultValidator, true)
}

// ValidateWith runs validator on q, see astvalidation.Validator.Validate.
func (q *Query) ValidateWith(validator *astvalidation.Validator, validate bool) (ValidationResult, error) {
	result, err := validator.Validate(q, validate)
	if err != nil {
		return ValidationResult{}, err
	}
	return validationResultFrom(result), nil
}
