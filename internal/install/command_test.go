package install_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/execshell"
	"github.com/temirov/depfetch/internal/install"
	"github.com/temirov/depfetch/internal/projectfiles"
)

type recordingGitExecutor struct {
	invocations []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	if len(details.Arguments) == 3 && details.Arguments[0] == "clone" {
		if mkdirError := os.MkdirAll(details.Arguments[2], 0o755); mkdirError != nil {
			return execshell.ExecutionResult{}, mkdirError
		}
	}
	return execshell.ExecutionResult{}, nil
}

func TestInstallCommandAppliesFlags(t *testing.T) {
	projectRoot := buildProject(t)
	control := newStubVersionControl()
	builder := install.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() install.CommandConfiguration {
			configuration := install.DefaultCommandConfiguration()
			configuration.WorkspaceDirectory = "configured"
			return configuration
		},
		VersionControl: control,
	}

	command, buildError := builder.Build()
	require.NoError(t, buildError)
	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs([]string{"--project-root", projectRoot, "--workspace", "vendor", "--strip-vcs", "--skip-project-files"})

	require.NoError(t, command.Execute())

	require.DirExists(t, filepath.Join(projectRoot, "vendor", "utilities"))
	require.NoDirExists(t, filepath.Join(projectRoot, "vendor", "utilities", ".git"))
	require.NoDirExists(t, filepath.Join(projectRoot, "configured"))
	require.NoFileExists(t, filepath.Join(projectRoot, projectfiles.RulesFileName))
	require.Equal(t, "vendor\n", readProjectFile(t, filepath.Join(projectRoot, ".gitignore")))
	require.Contains(t, output.String(), "Installed 2 dependencies into "+filepath.Join(projectRoot, "vendor")+".\n")
}

func TestInstallCommandUsesConfigurationWithoutFlags(t *testing.T) {
	projectRoot := buildProject(t)
	builder := install.CommandBuilder{
		ConfigurationProvider: func() install.CommandConfiguration {
			configuration := install.DefaultCommandConfiguration()
			configuration.ProjectRoot = projectRoot
			configuration.UpdateIgnoreFile = false
			return configuration
		},
		VersionControl: newStubVersionControl(),
	}

	command, buildError := builder.Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetArgs([]string{})

	require.NoError(t, command.Execute())
	require.FileExists(t, filepath.Join(projectRoot, projectfiles.RulesFileName))
	require.NoFileExists(t, filepath.Join(projectRoot, ".gitignore"))
}

func TestInstallCommandBuildsGitGatewayFromExecutor(t *testing.T) {
	projectRoot := buildProject(t)
	executor := &recordingGitExecutor{}
	builder := install.CommandBuilder{GitExecutor: executor}

	command, buildError := builder.Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetArgs([]string{"--project-root", projectRoot, "--skip-project-files", "--skip-ignore"})

	require.NoError(t, command.Execute())
	require.Len(t, executor.invocations, 2)
	require.Equal(t, []string{"clone", "https://example.com/utilities.git", filepath.Join(projectRoot, "deps", "utilities")}, executor.invocations[0].Arguments)
	require.Equal(t, []string{"checkout", "main"}, executor.invocations[1].Arguments)
	require.Equal(t, filepath.Join(projectRoot, "deps", "utilities"), executor.invocations[1].WorkingDirectory)
}

func TestInstallCommandRejectsPositionalArguments(t *testing.T) {
	builder := install.CommandBuilder{VersionControl: newStubVersionControl()}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"extra"})

	require.ErrorContains(t, command.Execute(), "does not accept positional arguments")
}

func TestDefaultConfigurationValuesArePrefixed(t *testing.T) {
	values := install.DefaultConfigurationValues("install")
	require.Equal(t, "dependencies.json", values["install.manifest"])
	require.Equal(t, "deps", values["install.workspace"])
	require.Equal(t, true, values["install.update_project_files"])
	require.Equal(t, false, values["install.strip_vcs_metadata"])

	unprefixed := install.DefaultConfigurationValues(" ")
	require.Equal(t, "iproj.json", unprefixed["iproj_file"])
}

func TestCommandConfigurationSanitizeRestoresDefaults(t *testing.T) {
	sanitized := install.CommandConfiguration{
		ManifestPath:     "  custom.yaml ",
		SourceExtensions: []string{" .rpgle ", ""},
	}.Sanitize()

	require.Equal(t, "custom.yaml", sanitized.ManifestPath)
	require.Equal(t, "deps", sanitized.WorkspaceDirectory)
	require.Equal(t, ".", sanitized.ProjectRoot)
	require.Equal(t, ".gitignore", sanitized.IgnoreFilePath)
	require.Equal(t, []string{".rpgle"}, sanitized.SourceExtensions)
	require.Empty(t, sanitized.IncludeExtensions)
}
