package graphql

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// DocumentCache holds parsed query documents keyed by source name and the hash of their text.
// Cached documents are shared between queries and must not be modified.
// A nil *DocumentCache caches nothing.
type DocumentCache struct {
	documents *lru.Cache
}

func NewDocumentCache(size int) (*DocumentCache, error) {
	documents, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating document cache")
	}
	return &DocumentCache{documents: documents}, nil
}

func (c *DocumentCache) Len() int {
	if c == nil {
		return 0
	}
	return c.documents.Len()
}

type documentKey struct {
	sourceName string
	hash       uint64
}

func (c *DocumentCache) get(key documentKey) (*ast.QueryDocument, bool) {
	if c == nil {
		return nil, false
	}
	cached, ok := c.documents.Get(key)
	if !ok {
		return nil, false
	}
	document, ok := cached.(*ast.QueryDocument)
	return document, ok
}

func (c *DocumentCache) add(key documentKey, document *ast.QueryDocument) {
	if c == nil {
		return
	}
	c.documents.Add(key, document)
}
