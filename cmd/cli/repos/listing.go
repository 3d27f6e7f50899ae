package repos

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitfleet/internal/registry"
	"github.com/temirov/gitfleet/internal/vcs"
)

const (
	// OutputFormatTable renders a table.
	OutputFormatTable = "table"
	// OutputFormatYAML renders a YAML sequence.
	OutputFormatYAML = "yaml"

	columnNameConstant          = "Name"
	columnKindConstant          = "Kind"
	columnBranchConstant        = "Branch"
	columnPathConstant          = "Path"
	columnRemoteConstant        = "Remote"
	detachedBranchLabelConstant = "(detached)"
	yamlEncodeTemplateConstant  = "encode repositories: %w"
)

// SupportedOutputFormats lists the accepted --output values.
var SupportedOutputFormats = []string{OutputFormatTable, OutputFormatYAML}

// RepositoryEntry is one row of a repository listing.
type RepositoryEntry struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Branch    string `yaml:"branch,omitempty"`
	Path      string `yaml:"path"`
	RemoteURL string `yaml:"remote_url"`
}

// describeRepositories converts records into entries, reading the current branch when requested.
func describeRepositories(executionContext context.Context, records []registry.Record, includeBranch bool) ([]RepositoryEntry, error) {
	entries := make([]RepositoryEntry, 0, len(records))
	for _, record := range records {
		entry := RepositoryEntry{Name: record.Name, Kind: string(record.Kind), Path: record.Path, RemoteURL: record.RemoteURL}
		if includeBranch {
			branch, branchError := record.Handle.CurrentBranch(executionContext)
			switch {
			case errors.Is(branchError, vcs.ErrDetachedHead):
				branch = detachedBranchLabelConstant
			case branchError != nil:
				return nil, branchError
			}
			entry.Branch = branch
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func renderRepositoryTable(writer io.Writer, entries []RepositoryEntry, includeBranch bool) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(writer)
	header := table.Row{columnNameConstant, columnKindConstant, columnPathConstant, columnRemoteConstant}
	if includeBranch {
		header = table.Row{columnNameConstant, columnKindConstant, columnBranchConstant, columnPathConstant, columnRemoteConstant}
	}
	tableWriter.AppendHeader(header)
	tableWriter.AppendRows(lo.Map(entries, func(entry RepositoryEntry, _ int) table.Row {
		if includeBranch {
			return table.Row{entry.Name, entry.Kind, entry.Branch, entry.Path, entry.RemoteURL}
		}
		return table.Row{entry.Name, entry.Kind, entry.Path, entry.RemoteURL}
	}))
	style := table.StyleLight
	style.Options.DrawBorder = false
	tableWriter.SetStyle(style)
	tableWriter.Render()
}

func renderRepositoryYAML(writer io.Writer, entries []RepositoryEntry) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(entries); encodeError != nil {
		return fmt.Errorf(yamlEncodeTemplateConstant, encodeError)
	}
	return encoder.Close()
}
