package repos

import (
	"github.com/spf13/cobra"

	flagutils "github.com/temirov/gitfleet/internal/utils/flags"
)

const (
	listUseConstant              = "list"
	listShortDescriptionConstant = "List registered repositories with their current branch"
	listLongDescriptionConstant  = "list loads the registry and prints every repository in registry order (libraries in manifest order, the project last) with its kind, current branch, path and remote."
	outputFlagNameConstant       = "output"
	outputFlagShorthandConstant  = "o"
	outputFlagDescription        = "output format"
)

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	Dependencies CommandDependencies
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().StringP(outputFlagNameConstant, outputFlagShorthandConstant, OutputFormatTable, flagutils.FormatChoiceUsage(OutputFormatTable, SupportedOutputFormats, outputFlagDescription))
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, _ []string) error {
	rawFormat, _ := command.Flags().GetString(outputFlagNameConstant)
	outputFormat, formatError := flagutils.NormalizeChoice(outputFlagNameConstant, rawFormat, SupportedOutputFormats)
	if formatError != nil {
		return formatError
	}

	configuration := builder.Dependencies.configuration()
	repositoryRegistry, loadError := builder.Dependencies.loadRegistry(command.Context(), configuration, command.ErrOrStderr())
	if loadError != nil {
		return loadError
	}

	entries, describeError := describeRepositories(command.Context(), repositoryRegistry.Records(), true)
	if describeError != nil {
		return describeError
	}
	if outputFormat == OutputFormatYAML {
		return renderRepositoryYAML(command.OutOrStdout(), entries)
	}
	renderRepositoryTable(command.OutOrStdout(), entries, true)
	return nil
}
