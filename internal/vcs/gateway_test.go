package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depfetch/internal/execshell"
)

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses []error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	next := executor.responses[0]
	executor.responses = executor.responses[1:]
	return execshell.ExecutionResult{}, next
}

func TestNewGatewayRequiresExecutor(t *testing.T) {
	gateway, err := NewGateway(nil)
	require.ErrorIs(t, err, ErrGitExecutorNotConfigured)
	require.Nil(t, gateway)
}

func TestFetchClonesIntoDestination(t *testing.T) {
	executor := &stubGitExecutor{}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	destination := filepath.Join(t.TempDir(), "lib")
	require.NoError(t, gateway.Fetch(context.Background(), " https://example.com/lib.git ", destination))

	require.Len(t, executor.recorded, 1)
	require.Equal(t, []string{"clone", "https://example.com/lib.git", destination}, executor.recorded[0].Arguments)
	require.Equal(t, "0", executor.recorded[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestFetchAcceptsEmptyExistingDirectory(t *testing.T) {
	executor := &stubGitExecutor{}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	destination := t.TempDir()
	require.NoError(t, gateway.Fetch(context.Background(), "u1", destination))
	require.Len(t, executor.recorded, 1)
}

func TestFetchRejectsPopulatedDestination(t *testing.T) {
	executor := &stubGitExecutor{}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	destination := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(destination, "README"), []byte("leftover"), 0o644))

	fetchError := gateway.Fetch(context.Background(), "u1", destination)
	require.ErrorIs(t, fetchError, ErrDestinationNotEmpty)
	require.Empty(t, executor.recorded)
}

func TestFetchValidatesInputs(t *testing.T) {
	gateway, err := NewGateway(&stubGitExecutor{})
	require.NoError(t, err)

	require.ErrorIs(t, gateway.Fetch(context.Background(), "  ", "dest"), ErrRepositoryURLRequired)
	require.ErrorIs(t, gateway.Fetch(context.Background(), "u1", ""), ErrDestinationRequired)
}

func TestFetchSurfacesGitFailure(t *testing.T) {
	cloneFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}}
	executor := &stubGitExecutor{responses: []error{cloneFailure}}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	fetchError := gateway.Fetch(context.Background(), "u1", filepath.Join(t.TempDir(), "lib"))

	var commandFailure execshell.CommandFailedError
	require.True(t, errors.As(fetchError, &commandFailure))
	require.Equal(t, 128, commandFailure.Result.ExitCode)
	require.ErrorContains(t, fetchError, "failed to clone u1")
}

func TestCheckoutTrimsReference(t *testing.T) {
	executor := &stubGitExecutor{}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	require.NoError(t, gateway.Checkout(context.Background(), "/workspace/deps/lib", " v1.2.0\n"))

	require.Len(t, executor.recorded, 1)
	require.Equal(t, []string{"checkout", "v1.2.0"}, executor.recorded[0].Arguments)
	require.Equal(t, "/workspace/deps/lib", executor.recorded[0].WorkingDirectory)
}

func TestCheckoutValidatesInputs(t *testing.T) {
	executor := &stubGitExecutor{}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	require.ErrorIs(t, gateway.Checkout(context.Background(), "/workspace/deps/lib", " \t"), ErrReferenceRequired)
	require.ErrorIs(t, gateway.Checkout(context.Background(), "", "main"), ErrDestinationRequired)
	require.Empty(t, executor.recorded)
}

func TestCheckoutSurfacesUnknownReference(t *testing.T) {
	executor := &stubGitExecutor{responses: []error{errors.New("pathspec did not match")}}
	gateway, err := NewGateway(executor)
	require.NoError(t, err)

	checkoutError := gateway.Checkout(context.Background(), "/workspace/deps/lib", "missing")
	require.ErrorContains(t, checkoutError, `failed to check out "missing"`)
}
