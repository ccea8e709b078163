package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant               = "."
	environmentKeySeparatorConstant                 = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
)

// ConfigurationLoaderOptions describe where configuration is looked up.
type ConfigurationLoaderOptions struct {
	// Name is the configuration file base name searched in SearchPaths, without extension.
	Name string
	// Type is the viper format of searched files, such as "yaml".
	Type string
	// EnvironmentPrefix namespaces environment overrides: common.log_level becomes PREFIX_COMMON_LOG_LEVEL.
	EnvironmentPrefix string
	SearchPaths       []string
	// Embedded is merged first, so every other source overrides it.
	Embedded     []byte
	EmbeddedType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers defaults, embedded configuration, a configuration file, and environment
// variables, in increasing precedence.
type ConfigurationLoader struct {
	options ConfigurationLoaderOptions
}

// NewConfigurationLoader creates a loader from options. Slices are copied.
func NewConfigurationLoader(options ConfigurationLoaderOptions) *ConfigurationLoader {
	copied := options
	copied.SearchPaths = append([]string(nil), options.SearchPaths...)
	copied.Embedded = append([]byte(nil), options.Embedded...)
	copied.EmbeddedType = strings.TrimSpace(options.EmbeddedType)
	return &ConfigurationLoader{options: copied}
}

// LoadConfiguration populates targetConfiguration. An explicit configurationFilePath must exist; without
// one the search paths are tried and a missing file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.options.Name)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.options.Embedded) > 0 {
		embeddedType := loader.options.EmbeddedType
		if len(embeddedType) == 0 {
			embeddedType = loader.options.Type
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.options.Embedded)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}
	viperInstance.SetConfigType(loader.options.Type)

	for _, searchPath := range loader.options.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.options.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	trimmedFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedFilePath) > 0 {
		viperInstance.SetConfigFile(trimmedFilePath)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if len(trimmedFilePath) > 0 || !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
