//go:build windows

package goldie

import (
	"bytes"
	"testing"
)

func Assert(t *testing.T, name string, actual []byte, _ ...bool) {
	t.Helper()

	New(t).Assert(t, name, bytes.ReplaceAll(actual, []byte("\r\n"), []byte("\n")))
}

func Update(t *testing.T, name string, actual []byte) {
	t.Helper()
	t.Fatalf("golden files should not be updated on windows")
}
