// Package vcs clones dependencies and checks out pinned references by shelling out to git.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/depfetch/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	repositoryURLRequiredMessageConstant     = "repository URL must be provided"
	destinationRequiredMessageConstant       = "destination path must be provided"
	destinationNotEmptyMessageConstant       = "destination already exists and is not empty"
	referenceRequiredMessageConstant         = "reference must be provided"
	destinationNotEmptyTemplateConstant      = "%w: %s"
	destinationInspectionTemplateConstant    = "unable to inspect destination %s: %w"
	cloneFailureTemplateConstant             = "failed to clone %s: %w"
	checkoutFailureTemplateConstant          = "failed to check out %q in %s: %w"
	gitCloneSubcommandConstant               = "clone"
	gitCheckoutSubcommandConstant            = "checkout"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryURLRequired indicates Fetch received an empty URL.
var ErrRepositoryURLRequired = errors.New(repositoryURLRequiredMessageConstant)

// ErrDestinationRequired indicates an empty destination or repository path.
var ErrDestinationRequired = errors.New(destinationRequiredMessageConstant)

// ErrDestinationNotEmpty indicates Fetch was pointed at a directory that was not cleared first.
var ErrDestinationNotEmpty = errors.New(destinationNotEmptyMessageConstant)

// ErrReferenceRequired indicates Checkout received a reference that is empty after trimming.
var ErrReferenceRequired = errors.New(referenceRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the gateway.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Gateway fetches and checks out repositories through git.
type Gateway struct {
	executor GitExecutor
}

// NewGateway constructs a Gateway around the provided executor.
func NewGateway(executor GitExecutor) (*Gateway, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Gateway{executor: executor}, nil
}

// Fetch clones repositoryURL into destinationPath.
func (gateway *Gateway) Fetch(executionContext context.Context, repositoryURL string, destinationPath string) error {
	trimmedURL := strings.TrimSpace(repositoryURL)
	if len(trimmedURL) == 0 {
		return ErrRepositoryURLRequired
	}
	if len(strings.TrimSpace(destinationPath)) == 0 {
		return ErrDestinationRequired
	}

	empty, inspectionError := isAbsentOrEmpty(destinationPath)
	if inspectionError != nil {
		return fmt.Errorf(destinationInspectionTemplateConstant, destinationPath, inspectionError)
	}
	if !empty {
		return fmt.Errorf(destinationNotEmptyTemplateConstant, ErrDestinationNotEmpty, destinationPath)
	}

	_, executionError := gateway.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, trimmedURL, destinationPath},
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	if executionError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, trimmedURL, executionError)
	}
	return nil
}

// Checkout switches the working tree at repositoryPath to reference, trimmed of surrounding whitespace.
func (gateway *Gateway) Checkout(executionContext context.Context, repositoryPath string, reference string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrDestinationRequired
	}
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return ErrReferenceRequired
	}

	_, executionError := gateway.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCheckoutSubcommandConstant, trimmedReference},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	if executionError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, trimmedReference, repositoryPath, executionError)
	}
	return nil
}

func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue}
}

func isAbsentOrEmpty(directoryPath string) (bool, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if errors.Is(openError, os.ErrNotExist) {
		return true, nil
	}
	if openError != nil {
		return false, openError
	}
	defer directoryHandle.Close()

	_, readError := directoryHandle.Readdirnames(1)
	if errors.Is(readError, io.EOF) {
		return true, nil
	}
	return false, readError
}
