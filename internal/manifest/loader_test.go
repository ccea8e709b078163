package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depfetch/internal/manifest"
)

const (
	jsonManifestContentConstant = `{
  "version": 2,
  "dependencies": {
    "zeta": {"url": "https://example.com/zeta.git", "ref": " main "},
    "alpha": {"url": "https://example.com/alpha.git", "ref": "v1.2.0"},
    "mid": {"url": "https://example.com/mid.git", "ref": "0f3c2a1"}
  }
}`
	yamlManifestContentConstant = `dependencies:
  zeta:
    url: https://example.com/zeta.git
    ref: main
  alpha:
    url: https://example.com/alpha.git
    ref: v1.2.0
  mid:
    url: https://example.com/mid.git
    ref: 0f3c2a1
`
	tomlManifestContentConstant = `[dependencies.zeta]
url = "https://example.com/zeta.git"
ref = "main"

[dependencies.alpha]
url = "https://example.com/alpha.git"
ref = "v1.2.0"

[dependencies.mid]
url = "https://example.com/mid.git"
ref = "0f3c2a1"
`
)

func writeManifest(t *testing.T, fileName string, content string) string {
	t.Helper()
	manifestPath := filepath.Join(t.TempDir(), fileName)
	require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0o644))
	return manifestPath
}

func TestLoadKeepsDeclarationOrder(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		content  string
	}{
		{name: "json", fileName: manifest.DefaultFileName, content: jsonManifestContentConstant},
		{name: "yaml", fileName: "dependencies.yaml", content: yamlManifestContentConstant},
		{name: "yml", fileName: "dependencies.yml", content: yamlManifestContentConstant},
		{name: "toml", fileName: "dependencies.toml", content: tomlManifestContentConstant},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			manifestPath := writeManifest(t, testCase.fileName, testCase.content)

			loaded, loadError := manifest.Load(manifestPath)
			require.NoError(t, loadError)
			require.Equal(t, manifestPath, loaded.Path)
			require.Equal(t, []string{"zeta", "alpha", "mid"}, loaded.Names())

			alpha, found := loaded.Lookup("alpha")
			require.True(t, found)
			require.Equal(t, "https://example.com/alpha.git", alpha.URL)
			require.Equal(t, "v1.2.0", alpha.Reference)

			mid, found := loaded.Lookup("mid")
			require.True(t, found)
			require.Equal(t, "0f3c2a1", mid.TrimmedReference())
		})
	}
}

func TestLoadKeepsReferenceWhitespaceForCallers(t *testing.T) {
	loaded, loadError := manifest.Load(writeManifest(t, manifest.DefaultFileName, jsonManifestContentConstant))
	require.NoError(t, loadError)

	zeta, found := loaded.Lookup("zeta")
	require.True(t, found)
	require.Equal(t, " main ", zeta.Reference)
	require.Equal(t, "main", zeta.TrimmedReference())
}

func TestLoadEmptyDependencies(t *testing.T) {
	loaded, loadError := manifest.Load(writeManifest(t, manifest.DefaultFileName, `{"dependencies": {}}`))
	require.NoError(t, loadError)
	require.Empty(t, loaded.Dependencies)
}

func TestLoadMissingManifest(t *testing.T) {
	_, loadError := manifest.Load(filepath.Join(t.TempDir(), manifest.DefaultFileName))
	require.ErrorIs(t, loadError, manifest.ErrManifestNotFound)
}

func TestLoadRejectsInvalidManifests(t *testing.T) {
	testCases := []struct {
		name          string
		fileName      string
		content       string
		expectedError error
	}{
		{name: "invalid json", fileName: "dependencies.json", content: `{"dependencies": `, expectedError: manifest.ErrMalformedManifest},
		{name: "json array", fileName: "dependencies.json", content: `[]`, expectedError: manifest.ErrMalformedManifest},
		{name: "missing field", fileName: "dependencies.json", content: `{"deps": {}}`, expectedError: manifest.ErrDependenciesFieldMissing},
		{name: "field not mapping", fileName: "dependencies.json", content: `{"dependencies": ["a"]}`, expectedError: manifest.ErrDependenciesFieldNotMapping},
		{name: "descriptor not mapping", fileName: "dependencies.json", content: `{"dependencies": {"a": "https://example.com/a.git"}}`, expectedError: manifest.ErrDependenciesFieldNotMapping},
		{name: "missing url", fileName: "dependencies.json", content: `{"dependencies": {"a": {"ref": "main"}}}`, expectedError: manifest.ErrDependencyURLMissing},
		{name: "duplicate name", fileName: "dependencies.json", content: `{"dependencies": {"a": {"url": "u1", "ref": "main"}, "a": {"url": "u2", "ref": "main"}}}`, expectedError: manifest.ErrDuplicateDependency},
		{name: "parent directory name", fileName: "dependencies.json", content: `{"dependencies": {"..": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "current directory name", fileName: "dependencies.json", content: `{"dependencies": {".": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "empty name", fileName: "dependencies.json", content: `{"dependencies": {"": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "blank name", fileName: "dependencies.json", content: `{"dependencies": {"  ": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "nested path name", fileName: "dependencies.json", content: `{"dependencies": {"../x": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "backslash name", fileName: "dependencies.json", content: `{"dependencies": {"a\\b": {"url": "u", "ref": "main"}}}`, expectedError: manifest.ErrInvalidDependencyName},
		{name: "absolute name", fileName: "dependencies.yaml", content: "dependencies:\n  /etc:\n    url: u\n    ref: main\n", expectedError: manifest.ErrInvalidDependencyName},
		{name: "toml parent name", fileName: "dependencies.toml", content: "[dependencies.\"..\"]\nurl = \"u\"\nref = \"main\"\n", expectedError: manifest.ErrInvalidDependencyName},
		{name: "empty yaml", fileName: "dependencies.yaml", content: ``, expectedError: manifest.ErrDependenciesFieldMissing},
		{name: "yaml sequence", fileName: "dependencies.yaml", content: "dependencies:\n  - a\n", expectedError: manifest.ErrDependenciesFieldNotMapping},
		{name: "toml scalar", fileName: "dependencies.toml", content: "dependencies = 3\n", expectedError: manifest.ErrDependenciesFieldNotMapping},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, loadError := manifest.Load(writeManifest(t, testCase.fileName, testCase.content))
			require.ErrorIs(t, loadError, manifest.ErrMalformedManifest)
			require.ErrorIs(t, loadError, testCase.expectedError)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	require.Equal(t, manifest.FormatJSON, manifest.DetectFormat("dependencies.json"))
	require.Equal(t, manifest.FormatJSON, manifest.DetectFormat("deps"))
	require.Equal(t, manifest.FormatYAML, manifest.DetectFormat("deps.YML"))
	require.Equal(t, manifest.FormatTOML, manifest.DetectFormat("deps.toml"))
}

func TestValidateNameAcceptsPlainDirectoryNames(t *testing.T) {
	for _, name := range []string{"utilities", "A", "lib.v2", "..hidden", "with space"} {
		require.NoError(t, manifest.ValidateName(name), name)
	}
}
