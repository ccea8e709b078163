package projectfiles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRules(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expectedEntries []string
		hasAssignment   bool
		rendered        string
	}{
		{
			name:          "empty file",
			content:       "",
			hasAssignment: false,
			rendered:      "SUBDIRS = deps/a\n",
		},
		{
			name:            "single line",
			content:         "SUBDIRS = qrpglesrc qsqlsrc\n",
			expectedEntries: []string{"qrpglesrc", "qsqlsrc"},
			hasAssignment:   true,
			rendered:        "SUBDIRS = qrpglesrc qsqlsrc deps/a\n",
		},
		{
			name:            "continuation lines and surrounding rules",
			content:         "# generated\nSUBDIRS := one \\\n  two\r\nall:\n\t$(MAKE) build\n",
			expectedEntries: []string{"one", "two"},
			hasAssignment:   true,
			rendered:        "# generated\nSUBDIRS = one two deps/a\nall:\n\t$(MAKE) build\n",
		},
		{
			name:          "similar variable is not the assignment",
			content:       "SUBDIRS_EXTRA = x\n",
			hasAssignment: false,
			rendered:      "SUBDIRS_EXTRA = x\nSUBDIRS = deps/a\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			document := parseRules(testCase.content)
			require.Equal(testInstance, testCase.hasAssignment, document.hasAssignment)
			require.Equal(testInstance, testCase.expectedEntries, document.entries)

			merged, _ := appendMissing(document.entries, []string{"deps/a"})
			require.Equal(testInstance, testCase.rendered, document.render(merged))
		})
	}
}

func TestRenderWithoutEntries(testInstance *testing.T) {
	require.Equal(testInstance, "SUBDIRS =\n", parseRules("").render(nil))
}

func TestAppendMissingCollapsesDuplicates(testInstance *testing.T) {
	merged, added := appendMissing([]string{"a", "b", "a"}, []string{"b", "c", "c"})
	require.Equal(testInstance, []string{"a", "b", "c"}, merged)
	require.Equal(testInstance, []string{"c"}, added)
}

func TestExtensionSetIsCaseInsensitive(testInstance *testing.T) {
	set := newExtensionSet([]string{".RPGLE", "sqlrpgle", " "})
	require.True(testInstance, set.matches("main.rpgle"))
	require.True(testInstance, set.matches("MAIN.RPGLE"))
	require.True(testInstance, set.matches("query.SqlRpgle"))
	require.False(testInstance, set.matches("notes.txt"))
	require.False(testInstance, set.matches("rpgle"))
}
