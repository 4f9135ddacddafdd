package graphql

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

var ErrEmptyRequest = errors.New("the provided request is empty")

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	Query         string          `json:"query"`
}

func UnmarshalRequest(reader io.Reader) (*Request, error) {
	requestBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "reading request")
	}
	if len(requestBytes) == 0 {
		return nil, ErrEmptyRequest
	}

	var request Request
	if err := json.Unmarshal(requestBytes, &request); err != nil {
		return nil, errors.Wrap(err, "decoding request")
	}
	return &request, nil
}

// Parse parses the query of the request for schema.
func (r *Request) Parse(schema *Schema, opts ...Option) (*Query, error) {
	if r.Query == "" {
		return nil, ErrEmptyRequest
	}
	return NewQuery(schema, r.Query, opts...)
}
