// Package goldie wraps github.com/sebdah/goldie/v2 with the fixture layout used in this module:
// golden files live in the testdata directory of the package under test.
package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func New(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
		goldie.WithDiffEngine(goldie.ClassicDiff),
	)
}
