package graphql

import (
	"encoding/json"
	"strconv"
)

// Response is the response envelope of a request rejected by validation.
// Static validation produces no data, so only errors and extensions are rendered.
type Response struct {
	Errors     Errors                 `json:"errors,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// ResponseFor renders the errors of result for q. The extensions identify the query.
func ResponseFor(q *Query, result ValidationResult) Response {
	return Response{
		Errors: result.Errors,
		Extensions: map[string]interface{}{
			"queryHash": strconv.FormatUint(q.Hash(), 16),
		},
	}
}

func (r Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
