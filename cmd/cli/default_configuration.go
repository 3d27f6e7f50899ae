package cli

import (
	"bytes"
	_ "embed"
)

// fleetDefaultsYAML seeds every gitfleet section (common, project, remotes, workspace, manifest,
// initialization, vcs and guard) beneath user configuration files and GITFLEET_ variables.
//
//go:embed default_config.yaml
var fleetDefaultsYAML []byte

// EmbeddedDefaultConfiguration returns a private copy of the built-in gitfleet defaults and the
// viper configuration type they are encoded in. Callers may mutate the returned bytes freely.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(fleetDefaultsYAML), configurationTypeConstant
}
