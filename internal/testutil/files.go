// Package testutil holds assertions shared by tests that inspect the files a
// run leaves behind and the errors it returns.
package testutil

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/figicons/internal/foundation/errors"
)

// ReadBundle decodes a bundle file into name -> entry fields.
func ReadBundle(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &out), "bundle %s is not valid JSON", path)
	return out
}

// AssertNotExist fails for every path that exists.
func AssertNotExist(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "expected %s not to exist", p)
	}
}

// AssertSameContent fails unless both files exist with identical bytes.
func AssertSameContent(t *testing.T, a, b string) {
	t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	da, err := os.ReadFile(a)
	require.NoError(t, err)
	// #nosec G304 - test helper, paths are controlled by test code
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, string(da), string(db), "%s and %s differ", a, b)
}

// AssertFileContent fails unless path holds exactly want.
func AssertFileContent(t *testing.T, path, want string) {
	t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

// CategoryOf returns the category of the first classified error in the chain,
// or "" when there is none.
func CategoryOf(err error) ferrors.ErrorCategory {
	if classified, ok := ferrors.AsClassified(err); ok {
		return classified.Category()
	}
	return ""
}
