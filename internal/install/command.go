package install

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/depfetch/internal/execshell"
	"github.com/temirov/depfetch/internal/reporting"
	"github.com/temirov/depfetch/internal/resolve"
	"github.com/temirov/depfetch/internal/vcs"
)

const (
	commandUseConstant                      = "install"
	commandShortDescriptionConstant         = "Fetch the dependencies declared in the manifest"
	commandLongDescriptionConstant          = "install clones every dependency listed in the manifest into the workspace, checks out the pinned reference, follows nested manifests, removes editor and project artifacts, and refreshes Rules.mk, iproj.json, and the ignore file."
	commandExampleConstant                  = "depfetch install --manifest dependencies.json --workspace deps --strip-vcs"
	unexpectedArgumentsErrorMessageConstant = "install does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "install failed: %w"
	manifestFlagNameConstant                = "manifest"
	manifestFlagDescriptionConstant         = "Path to the root dependency manifest (JSON, YAML, or TOML)"
	workspaceFlagNameConstant               = "workspace"
	workspaceFlagDescriptionConstant        = "Directory that receives the fetched dependencies"
	projectRootFlagNameConstant             = "project-root"
	projectRootFlagDescriptionConstant      = "Project directory holding Rules.mk, iproj.json, and the ignore file"
	stripVCSFlagNameConstant                = "strip-vcs"
	stripVCSFlagDescriptionConstant         = "Remove .git from every fetched dependency"
	skipProjectFilesFlagNameConstant        = "skip-project-files"
	skipProjectFilesFlagDescriptionConstant = "Leave Rules.mk and iproj.json untouched"
	skipIgnoreFlagNameConstant              = "skip-ignore"
	skipIgnoreFlagDescriptionConstant       = "Leave the ignore file untouched"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current install configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the install command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	VersionControl        resolve.VersionControl
	GitExecutor           vcs.GitExecutor
}

// Build constructs the install command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE:    builder.Run,
	}
	builder.BindFlags(command.Flags())
	return command, nil
}

// BindFlags registers the install flags on flagSet so that other commands can run an install.
func (builder *CommandBuilder) BindFlags(flagSet *pflag.FlagSet) {
	flagSet.String(manifestFlagNameConstant, "", manifestFlagDescriptionConstant)
	flagSet.String(workspaceFlagNameConstant, "", workspaceFlagDescriptionConstant)
	flagSet.String(projectRootFlagNameConstant, "", projectRootFlagDescriptionConstant)
	flagSet.Bool(stripVCSFlagNameConstant, false, stripVCSFlagDescriptionConstant)
	flagSet.Bool(skipProjectFilesFlagNameConstant, false, skipProjectFilesFlagDescriptionConstant)
	flagSet.Bool(skipIgnoreFlagNameConstant, false, skipIgnoreFlagDescriptionConstant)
}

// Run performs the install using configuration overridden by any flags set on command.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	configuration, flagError := builder.applyFlags(command.Flags(), builder.resolveConfiguration())
	if flagError != nil {
		return flagError
	}

	logger := builder.resolveLogger()
	versionControl, versionControlError := builder.resolveVersionControl(logger)
	if versionControlError != nil {
		return versionControlError
	}

	service, serviceError := NewService(ServiceDependencies{
		VersionControl: versionControl,
		Logger:         logger,
		Reporter:       reporting.NewWriterReporter(command.OutOrStdout()),
	})
	if serviceError != nil {
		return serviceError
	}

	if _, installError := service.Install(command.Context(), OptionsFromConfiguration(configuration)); installError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, installError)
	}
	return nil
}

func (builder *CommandBuilder) applyFlags(flagSet *pflag.FlagSet, configuration CommandConfiguration) (CommandConfiguration, error) {
	if flagSet == nil {
		return configuration, nil
	}

	stringOverrides := map[string]*string{
		manifestFlagNameConstant:    &configuration.ManifestPath,
		workspaceFlagNameConstant:   &configuration.WorkspaceDirectory,
		projectRootFlagNameConstant: &configuration.ProjectRoot,
	}
	for flagName, target := range stringOverrides {
		if !flagChanged(flagSet, flagName) {
			continue
		}
		flagValue, flagError := flagSet.GetString(flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*target = flagValue
	}

	if flagChanged(flagSet, stripVCSFlagNameConstant) {
		stripVCS, flagError := flagSet.GetBool(stripVCSFlagNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.StripVCSMetadata = stripVCS
	}

	if flagChanged(flagSet, skipProjectFilesFlagNameConstant) {
		skipProjectFiles, flagError := flagSet.GetBool(skipProjectFilesFlagNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.UpdateProjectFiles = !skipProjectFiles
	}

	if flagChanged(flagSet, skipIgnoreFlagNameConstant) {
		skipIgnore, flagError := flagSet.GetBool(skipIgnoreFlagNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.UpdateIgnoreFile = !skipIgnore
	}

	return configuration.Sanitize(), nil
}

func flagChanged(flagSet *pflag.FlagSet, flagName string) bool {
	flag := flagSet.Lookup(flagName)
	return flag != nil && flag.Changed
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveVersionControl(logger *zap.Logger) (resolve.VersionControl, error) {
	if builder.VersionControl != nil {
		return builder.VersionControl, nil
	}

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}
	return vcs.NewGateway(gitExecutor)
}
