package astvalidation

import (
	"errors"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
	"github.com/wundergraph/gqlstatic/pkg/warden"
)

var ErrContextSealed = errors.New("validation context already sealed")

// Context is the state of a single validation call.
// It is created by the Validator for each call and must not be reused.
type Context struct {
	// Warden is the only way rules look up types and fields
	Warden *warden.Warden
	// Report collects the errors of the call, it is append-only
	Report *operationreport.Report

	query         Query
	walker        *astvisitor.Walker
	postTraversal []irep.VisitFunc
	sealed        bool
}

func newContext(query Query) *Context {
	return &Context{
		Warden: warden.New(query.Schema(), query.Visibility()),
		Report: &operationreport.Report{},
		query:  query,
		walker: astvisitor.NewWalker(48),
	}
}

func (c *Context) Query() Query {
	return c.query
}

func (c *Context) Document() *ast.QueryDocument {
	return c.query.Document()
}

// Walker returns the walker driving the traversal. Rules may read its type and path
// information from within callbacks.
func (c *Context) Walker() *astvisitor.Walker {
	return c.walker
}

// Register adds fn to the enter callbacks of kind.
func (c *Context) Register(kind astvisitor.NodeKind, fn astvisitor.EnterFunc) error {
	if c.sealed {
		return ErrContextSealed
	}
	return c.walker.RegisterEnter(kind, fn)
}

// RegisterLeave adds fn to the leave callbacks of kind.
func (c *Context) RegisterLeave(kind astvisitor.NodeKind, fn astvisitor.LeaveFunc) error {
	if c.sealed {
		return ErrContextSealed
	}
	return c.walker.RegisterLeave(kind, fn)
}

// AddPostTraversalHandler registers fn to be called for every field of the
// internal representation once the traversal completed.
func (c *Context) AddPostTraversalHandler(fn irep.VisitFunc) error {
	if c.sealed {
		return ErrContextSealed
	}
	if fn == nil {
		return astvisitor.ErrCallbackMustNotBeNil
	}
	c.postTraversal = append(c.postTraversal, fn)
	return nil
}

// AddError appends err to the report. Errors added after the context was sealed are dropped.
func (c *Context) AddError(err operationreport.ExternalError) {
	if c.sealed {
		return
	}
	c.Report.AddExternalError(err)
}

func (c *Context) Errors() []operationreport.ExternalError {
	return c.Report.ExternalErrors
}

// Path returns a copy of the path to the node currently walked.
func (c *Context) Path() ast.Path {
	return append(ast.Path(nil), c.walker.Path...)
}

func (c *Context) Sealed() bool {
	return c.sealed
}

func (c *Context) seal() {
	c.sealed = true
}
