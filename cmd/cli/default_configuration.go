package cli

import (
	"bytes"
	_ "embed"
)

//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// DefaultConfigurationDocument returns a copy of the built-in YAML configuration. It is merged before any
// configuration file or environment override.
func DefaultConfigurationDocument() []byte {
	return bytes.Clone(defaultConfigurationDocument)
}
