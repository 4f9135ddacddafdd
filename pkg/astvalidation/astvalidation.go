// Package astvalidation validates GraphQL query documents against a schema and
// lowers them into the internal representation of package irep.
//
// A Validator runs a single walk over the document per call. The rewrite into the
// internal representation is installed first, then every configured Rule. Rules report
// validation errors as data; the internal representation is only returned for
// documents without errors.
package astvalidation

import (
	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
	"github.com/wundergraph/gqlstatic/pkg/warden"
)

var (
	ErrQueryMustNotBeNil    = errors.New("query must not be nil")
	ErrDocumentMustNotBeNil = errors.New("query document must not be nil")
	ErrNoRules              = errors.New("validator needs at least one rule")
)

// Query is a parsed document together with the schema it is validated against.
type Query interface {
	Document() *ast.QueryDocument
	Schema() *ast.Schema
	// Visibility filters the schema members the validation may see, nil shows everything.
	Visibility() warden.Filter
	// Trace runs fn, allowing the query to instrument it under key.
	Trace(key string, data map[string]interface{}, fn func())
}

// Result is the outcome of a validation call.
type Result struct {
	Errors []operationreport.ExternalError
	// IRep is nil whenever Errors is not empty
	IRep *irep.Document
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// DefaultRules returns the rules of DefaultValidator in the order they are run.
func DefaultRules() []Rule {
	return []Rule{
		FragmentTypesExist(),
		MutationRootExists(),
		SubscriptionRootExists(),
		FragmentSpreadsAreDefined(),
		FieldsAreDefinedOnType(),
		FieldsHaveAppropriateSelections(),
		FieldSelectionMerging(),
	}
}

var ruleConstructors = map[string]func() Rule{
	"FragmentTypesExist":              FragmentTypesExist,
	"MutationRootExists":              MutationRootExists,
	"SubscriptionRootExists":          SubscriptionRootExists,
	"FragmentSpreadsAreDefined":       FragmentSpreadsAreDefined,
	"FieldsAreDefinedOnType":          FieldsAreDefinedOnType,
	"FieldsHaveAppropriateSelections": FieldsHaveAppropriateSelections,
	"FieldSelectionMerging":           FieldSelectionMerging,
}

// RuleNames lists the names accepted by RulesByName in default order.
func RuleNames() []string {
	rules := DefaultRules()
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name())
	}
	return names
}

// RulesByName returns the built-in rules with the given names, in the given order.
func RulesByName(names ...string) ([]Rule, error) {
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		constructor, ok := ruleConstructors[name]
		if !ok {
			return nil, errors.Errorf("unknown rule %q", name)
		}
		rules = append(rules, constructor())
	}
	return rules, nil
}

// Validator validates queries with a fixed list of rules.
// A Validator holds no per call state and may be used concurrently.
type Validator struct {
	rules  []Rule
	logger abstractlogger.Logger
}

// NewValidator returns a Validator running rules in order.
// It fails if a rule is malformed, a validator without rules is malformed too.
func NewValidator(rules ...Rule) (*Validator, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if err := rule.check(); err != nil {
			return nil, err
		}
		if _, exists := seen[rule.name]; exists {
			return nil, errors.Errorf("rule %s configured more than once", rule.name)
		}
		seen[rule.name] = struct{}{}
	}
	return &Validator{
		rules:  append([]Rule(nil), rules...),
		logger: abstractlogger.NoopLogger,
	}, nil
}

// DefaultValidator returns a Validator running DefaultRules.
func DefaultValidator() *Validator {
	validator, err := NewValidator(DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return validator
}

// SetLogger sets the logger used for debug output of validation calls.
func (v *Validator) SetLogger(logger abstractlogger.Logger) {
	if logger == nil {
		logger = abstractlogger.NoopLogger
	}
	v.logger = logger
}

// Rules returns the names of the configured rules.
func (v *Validator) Rules() []string {
	names := make([]string, 0, len(v.rules))
	for _, rule := range v.rules {
		names = append(names, rule.name)
	}
	return names
}

// Validate lowers query into the internal representation and, if validate is true,
// runs every rule on it. The returned error is reserved for programming errors,
// validation errors are part of the Result.
func (v *Validator) Validate(query Query, validate bool) (result Result, err error) {
	if query == nil {
		return Result{}, ErrQueryMustNotBeNil
	}
	query.Trace("validate", map[string]interface{}{"validate": validate}, func() {
		result, err = v.validate(query, validate)
	})
	return result, err
}

func (v *Validator) validate(query Query, validate bool) (Result, error) {
	doc := query.Document()
	if doc == nil {
		return Result{}, ErrDocumentMustNotBeNil
	}

	ctx := newContext(query)
	rewrite := irep.NewRewrite(ctx.Warden)
	rules := []Rule{rewriteRule(rewrite)}
	if validate {
		rules = append(rules, v.rules...)
	}
	for _, rule := range rules {
		if err := rule.apply(ctx); err != nil {
			ctx.Report.AddInternalError(err)
		}
	}
	if err := ctx.Report.InternalError(); err != nil {
		return Result{}, err
	}

	if err := ctx.walker.Walk(doc, ctx.Warden); err != nil {
		return Result{}, errors.Wrap(err, "walking document")
	}
	document := rewrite.Document()
	irep.Visit(document.OperationDefinitions, ctx.postTraversal)
	ctx.seal()

	if err := ctx.Report.InternalError(); err != nil {
		return Result{}, err
	}

	result := Result{Errors: ctx.Errors()}
	if !ctx.Report.HasErrors() {
		result.IRep = document
	}

	v.logger.Debug("validated query",
		abstractlogger.Int("operations", len(doc.Operations)),
		abstractlogger.Int("fragments", len(doc.Fragments)),
		abstractlogger.Int("errors", len(result.Errors)),
		abstractlogger.Any("validate", validate),
	)
	return result, nil
}

func rewriteRule(rewrite *irep.Rewrite) Rule {
	return FullTraversalRule("Rewrite", func(ctx *Context) error {
		return rewrite.Register(ctx.walker)
	})
}
