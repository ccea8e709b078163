package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForCloneNamesSourceAndDestination(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"clone", "https://example.com/lib.git", "deps/lib"}},
	}

	require.Equal(t, "Cloning https://example.com/lib.git into deps/lib", formatter.BuildStartedMessage(command))
}

func TestBuildFailureMessageForCheckoutIncludesStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"checkout", "v2.0"}, WorkingDirectory: "deps/lib"},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "pathspec 'v2.0' did not match\n"})

	require.Equal(t, "Failed to check out v2.0 in deps/lib (exit code 1: pathspec 'v2.0' did not match)", message)
}

func TestBuildSuccessMessageForCheckoutWithoutWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"checkout", "main"}}}

	require.Equal(t, "current directory now at main", formatter.BuildSuccessMessage(command))
}

func TestGenericMessagesForOtherCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"status", "--porcelain"}, WorkingDirectory: "/workspace/repo"},
	}

	require.Equal(t, "Running git status --porcelain (in /workspace/repo)", formatter.BuildStartedMessage(command))
	require.Equal(t, "git status --porcelain (in /workspace/repo) failed: boom", formatter.BuildExecutionFailureMessage(command, errors.New("boom")))
}
