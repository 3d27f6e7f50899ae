package repos

import (
	"github.com/spf13/cobra"
)

const (
	initUseConstant              = "init"
	initShortDescriptionConstant = "Clone the project and every library it lists"
	initLongDescriptionConstant  = "init clones the configured project, reads its library manifest, clones each library into the workspace and prints the resulting registry. Existing clones of the same remotes are reused."
)

// InitCommandBuilder assembles the init command.
type InitCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initUseConstant,
		Short: initShortDescriptionConstant,
		Long:  initLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.Dependencies.configuration()
	repositoryRegistry, loadError := builder.Dependencies.loadRegistry(command.Context(), configuration, command.OutOrStdout())
	if loadError != nil {
		return loadError
	}

	entries, describeError := describeRepositories(command.Context(), repositoryRegistry.Records(), false)
	if describeError != nil {
		return describeError
	}
	renderRepositoryTable(command.OutOrStdout(), entries, false)
	return nil
}
