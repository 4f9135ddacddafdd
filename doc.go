// Package gqlstatic is the static validation stage of a GraphQL engine.
//
// # About this tool
//
// Given a schema and a query document gqlstatic decides whether the document is valid
// against the schema before anything gets executed, and lowers the document into an
// internal representation an execution stage can consume: every selection resolved per
// possible object type, fragments inlined, schema field definitions attached.
//
// The building blocks live in pkg:
// - warden hides schema members from validation, e.g. fields annotated with @inaccessible
// - astvisitor walks a document once and dispatches every node to registered callbacks
// - irep builds the internal representation during the same walk
// - astvalidation holds the rules and the Validator orchestrating a validation call
// - graphql binds documents to schemas and instruments validation calls
//
// The gqlstatic command validates query files from the command line.
package main
