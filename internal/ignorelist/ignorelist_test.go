package ignorelist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depfetch/internal/ignorelist"
)

func TestEnsureIgnored(t *testing.T) {
	testCases := []struct {
		name            string
		initialContent  *string
		directoryName   string
		expectedAdded   bool
		expectedContent string
	}{
		{
			name:            "missing file",
			directoryName:   "dep",
			expectedAdded:   true,
			expectedContent: "dep\n",
		},
		{
			name:            "trailing separators trimmed",
			initialContent:  stringPointer(""),
			directoryName:   `deps/\`,
			expectedAdded:   true,
			expectedContent: "deps\n",
		},
		{
			name:            "last line without newline",
			initialContent:  stringPointer("*.log"),
			directoryName:   "deps",
			expectedAdded:   true,
			expectedContent: "*.log\ndeps\n",
		},
		{
			name:            "existing entry with slash",
			initialContent:  stringPointer("bin/\ndeps/\n"),
			directoryName:   "deps",
			expectedAdded:   false,
			expectedContent: "bin/\ndeps/\n",
		},
		{
			name:            "existing entry without final newline",
			initialContent:  stringPointer("  deps"),
			directoryName:   "deps/",
			expectedAdded:   false,
			expectedContent: "  deps",
		},
		{
			name:            "other entries kept",
			initialContent:  stringPointer("# build output\nbin/\n"),
			directoryName:   "deps",
			expectedAdded:   true,
			expectedContent: "# build output\nbin/\ndeps\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ignoreFilePath := filepath.Join(t.TempDir(), ignorelist.DefaultFileName)
			if testCase.initialContent != nil {
				require.NoError(t, os.WriteFile(ignoreFilePath, []byte(*testCase.initialContent), 0o644))
			}

			added, ensureError := ignorelist.EnsureIgnored(ignoreFilePath, testCase.directoryName)
			require.NoError(t, ensureError)
			require.Equal(t, testCase.expectedAdded, added)

			content, readError := os.ReadFile(ignoreFilePath)
			require.NoError(t, readError)
			require.Equal(t, testCase.expectedContent, string(content))
		})
	}
}

func TestEnsureIgnoredIsIdempotent(t *testing.T) {
	ignoreFilePath := filepath.Join(t.TempDir(), ignorelist.DefaultFileName)

	for attempt := 0; attempt < 3; attempt++ {
		_, ensureError := ignorelist.EnsureIgnored(ignoreFilePath, "deps")
		require.NoError(t, ensureError)
	}

	content, readError := os.ReadFile(ignoreFilePath)
	require.NoError(t, readError)
	require.Equal(t, "deps\n", string(content))
}

func TestEnsureIgnoredRejectsEmptyName(t *testing.T) {
	ignoreFilePath := filepath.Join(t.TempDir(), ignorelist.DefaultFileName)

	_, ensureError := ignorelist.EnsureIgnored(ignoreFilePath, " / ")
	require.ErrorIs(t, ensureError, ignorelist.ErrDirectoryNameRequired)
	require.NoFileExists(t, ignoreFilePath)
}

func stringPointer(value string) *string {
	return &value
}
