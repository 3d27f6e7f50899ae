package repos

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitfleet/internal/dispatch"
	"github.com/temirov/gitfleet/internal/prompt"
	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/utils"
)

const (
	messageFlagNameConstant      = "message"
	messageFlagShorthandConstant = "m"
	messageFlagUsageConstant     = "Commit message (prompted when omitted)."
	tagNameFlagNameConstant      = "name"
	tagNameFlagUsageConstant     = "Tag name (prompted when omitted)."
	tagMessageFlagUsageConstant  = "Tag description (prompted when omitted)."
	targetArgumentIndexConstant  = 0
	branchArgumentIndexConstant  = 1
)

// ActionInputs exposes the flags and arguments of an invocation to an action factory.
type ActionInputs struct {
	Command   *cobra.Command
	Arguments []string
	Prompter  Prompter
}

func (inputs ActionInputs) argument(index int) string {
	if index < len(inputs.Arguments) {
		return strings.TrimSpace(inputs.Arguments[index])
	}
	return ""
}

func (inputs ActionInputs) flag(name string) string {
	value, _ := inputs.Command.Flags().GetString(name)
	return value
}

// ActionDefinition describes one repository action command.
type ActionDefinition struct {
	Use     string
	Short   string
	Long    string
	Args    cobra.PositionalArgs
	Flags   func(command *cobra.Command)
	Factory func(inputs ActionInputs) (dispatch.Action, error)
}

// ActionDefinitions returns the repository action commands in help order.
func ActionDefinitions() []ActionDefinition {
	return []ActionDefinition{
		{
			Use:   "status <repository|all>",
			Short: "Show the working tree status of one repository",
			Long:  "status prints the working tree status of the named repository. Repositories on a protected branch report a notice instead. The all target only prints a notice.",
			Args:  cobra.ExactArgs(1),
			Factory: func(ActionInputs) (dispatch.Action, error) {
				return dispatch.StatusAction{}, nil
			},
		},
		{
			Use:   "branch-new <repository|all> [branch]",
			Short: "Create a branch, switch to it and publish it to origin",
			Long:  "branch-new creates the branch locally, checks it out and pushes it to origin with upstream tracking.",
			Args:  cobra.RangeArgs(1, 2),
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				branchName, branchError := inputs.Prompter.Resolve(inputs.argument(branchArgumentIndexConstant), prompt.NewBranchPromptConstant)
				if branchError != nil {
					return nil, branchError
				}
				return dispatch.CreateAndTrackBranchAction{BranchName: branchName}, nil
			},
		},
		{
			Use:   "branch-checkout <repository|all> [branch]",
			Short: "Check out an existing remote branch",
			Long:  "branch-checkout creates a local branch tracking origin/<branch> and switches to it.",
			Args:  cobra.RangeArgs(1, 2),
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				branchName, branchError := inputs.Prompter.Resolve(inputs.argument(branchArgumentIndexConstant), prompt.WorkingBranchPromptConstant)
				if branchError != nil {
					return nil, branchError
				}
				return dispatch.CheckoutExistingBranchAction{BranchName: branchName}, nil
			},
		},
		{
			Use:   "add <repository|all>",
			Short: "Stage all changes",
			Long:  "add stages every modification, addition and deletion in the working tree.",
			Args:  cobra.ExactArgs(1),
			Factory: func(ActionInputs) (dispatch.Action, error) {
				return dispatch.StageAllChangesAction{}, nil
			},
		},
		{
			Use:   "commit <repository|all>",
			Short: "Commit staged changes",
			Long:  "commit records the staged changes with the given message.",
			Args:  cobra.ExactArgs(1),
			Flags: addMessageFlag,
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				message, messageError := inputs.Prompter.Resolve(inputs.flag(messageFlagNameConstant), prompt.CommitMessagePromptConstant)
				if messageError != nil {
					return nil, messageError
				}
				return dispatch.CommitAction{Message: message}, nil
			},
		},
		{
			Use:   "push <repository|all>",
			Short: "Push the current branch to its upstream",
			Long:  "push publishes the current branch to the remote branch it tracks.",
			Args:  cobra.ExactArgs(1),
			Factory: func(ActionInputs) (dispatch.Action, error) {
				return dispatch.PushAction{}, nil
			},
		},
		{
			Use:   "tag <repository|all>",
			Short: "Create an annotated tag at HEAD",
			Long:  "tag creates an annotated tag on the current commit. The tag is not pushed.",
			Args:  cobra.ExactArgs(1),
			Flags: func(command *cobra.Command) {
				command.Flags().String(tagNameFlagNameConstant, "", tagNameFlagUsageConstant)
				command.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", tagMessageFlagUsageConstant)
			},
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				tagName, tagNameError := inputs.Prompter.Resolve(inputs.flag(tagNameFlagNameConstant), prompt.TagNamePromptConstant)
				if tagNameError != nil {
					return nil, tagNameError
				}
				tagMessage, tagMessageError := inputs.Prompter.Resolve(inputs.flag(messageFlagNameConstant), prompt.TagDescriptionPromptConstant)
				if tagMessageError != nil {
					return nil, tagMessageError
				}
				return dispatch.TagAction{TagName: tagName, Message: tagMessage}, nil
			},
		},
		{
			Use:   "commit-push <repository|all>",
			Short: "Commit staged changes and push them",
			Long:  "commit-push commits the staged changes and pushes them. Repositories on a protected branch are left untouched.",
			Args:  cobra.ExactArgs(1),
			Flags: addMessageFlag,
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				message, messageError := inputs.Prompter.Resolve(inputs.flag(messageFlagNameConstant), prompt.CommitMessagePromptConstant)
				if messageError != nil {
					return nil, messageError
				}
				return dispatch.CommitAndPushAction{Message: message}, nil
			},
		},
		{
			Use:   "add-commit-push <repository|all>",
			Short: "Stage all changes, commit and push",
			Long:  "add-commit-push stages everything, commits and pushes. Repositories on a protected branch are left untouched.",
			Args:  cobra.ExactArgs(1),
			Flags: addMessageFlag,
			Factory: func(inputs ActionInputs) (dispatch.Action, error) {
				message, messageError := inputs.Prompter.Resolve(inputs.flag(messageFlagNameConstant), prompt.CommitMessagePromptConstant)
				if messageError != nil {
					return nil, messageError
				}
				return dispatch.StageCommitAndPushAction{Message: message}, nil
			},
		},
	}
}

// ActionCommandBuilder assembles one repository action command.
type ActionCommandBuilder struct {
	Dependencies CommandDependencies
	Definition   ActionDefinition
}

// Build constructs the command described by the definition.
func (builder *ActionCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   builder.Definition.Use,
		Short: builder.Definition.Short,
		Long:  builder.Definition.Long,
		Args:  builder.Definition.Args,
		RunE:  builder.run,
	}
	if builder.Definition.Flags != nil {
		builder.Definition.Flags(command)
	}
	return command, nil
}

func (builder *ActionCommandBuilder) run(command *cobra.Command, arguments []string) error {
	target := strings.TrimSpace(arguments[targetArgumentIndexConstant])
	configuration := builder.Dependencies.configuration()

	repositoryRegistry, loadError := builder.Dependencies.loadRegistry(command.Context(), configuration, command.OutOrStdout())
	if loadError != nil {
		return loadError
	}
	if target != registry.AllTarget {
		if _, lookupError := repositoryRegistry.Lookup(target); lookupError != nil {
			return lookupError
		}
	}

	action, actionError := builder.Definition.Factory(ActionInputs{
		Command:   command,
		Arguments: arguments,
		Prompter:  resolvePrompter(builder.Dependencies.PrompterFactory, command),
	})
	if actionError != nil {
		return actionError
	}

	dispatcher := dispatch.NewDispatcher(dispatch.Dependencies{
		Registry:    repositoryRegistry,
		Guard:       dispatch.NewGuard(configuration.Guard.ProtectedBranches),
		Reporter:    dispatch.NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout())),
		Logger:      resolveLogger(builder.Dependencies.LoggerProvider),
		FailOnGuard: configuration.Guard.FailOnGuard,
	})
	_, applyError := dispatcher.Apply(command.Context(), target, action)
	return applyError
}

// BuildCommands constructs init, list and every action command.
func BuildCommands(dependencies CommandDependencies) ([]*cobra.Command, error) {
	initBuilder := InitCommandBuilder{Dependencies: dependencies}
	initCommand, initError := initBuilder.Build()
	if initError != nil {
		return nil, initError
	}
	listBuilder := ListCommandBuilder{Dependencies: dependencies}
	listCommand, listError := listBuilder.Build()
	if listError != nil {
		return nil, listError
	}

	commands := []*cobra.Command{initCommand, listCommand}
	for _, definition := range ActionDefinitions() {
		actionBuilder := ActionCommandBuilder{Dependencies: dependencies, Definition: definition}
		actionCommand, actionBuildError := actionBuilder.Build()
		if actionBuildError != nil {
			return nil, actionBuildError
		}
		commands = append(commands, actionCommand)
	}
	return commands, nil
}

func addMessageFlag(command *cobra.Command) {
	command.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", messageFlagUsageConstant)
}
