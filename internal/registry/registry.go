package registry

import (
	"strings"

	"github.com/samber/lo"
)

const (
	// AllTarget selects every registered repository.
	AllTarget = "all"

	emptyNameReasonConstant     = "empty"
	pathSeparatorReasonConstant = "contains a path separator"
	relativePathReasonConstant  = "refers to a relative directory"
	pathSeparatorsConstant      = `/\`
	currentDirectoryConstant    = "."
	parentDirectoryConstant     = ".."
)

// Registry is an immutable, ordered name to Record mapping.
type Registry struct {
	records []Record
	index   map[string]int
}

// New freezes records in the given order.
func New(records []Record) (*Registry, error) {
	index := make(map[string]int, len(records))
	for position, record := range records {
		if validationError := ValidateName(record.Name); validationError != nil {
			return nil, validationError
		}
		if _, duplicated := index[record.Name]; duplicated {
			return nil, DuplicateRepositoryError{Name: record.Name}
		}
		index[record.Name] = position
	}
	return &Registry{records: append([]Record{}, records...), index: index}, nil
}

// ValidateName rejects names that are reserved or unusable as directory names.
func ValidateName(name string) error {
	switch {
	case name == AllTarget:
		return ReservedRepositoryNameError{Name: name}
	case len(strings.TrimSpace(name)) == 0:
		return InvalidRepositoryNameError{Name: name, Reason: emptyNameReasonConstant}
	case strings.ContainsAny(name, pathSeparatorsConstant):
		return InvalidRepositoryNameError{Name: name, Reason: pathSeparatorReasonConstant}
	case name == currentDirectoryConstant || name == parentDirectoryConstant:
		return InvalidRepositoryNameError{Name: name, Reason: relativePathReasonConstant}
	default:
		return nil
	}
}

// Lookup resolves an exact name.
func (registry *Registry) Lookup(name string) (Record, error) {
	position, found := registry.index[name]
	if !found {
		return Record{}, UnknownRepositoryError{Name: name, Known: registry.Names()}
	}
	return registry.records[position], nil
}

// Resolve returns every record for AllTarget and the single named record otherwise.
func (registry *Registry) Resolve(target string) ([]Record, error) {
	if target == AllTarget {
		return registry.Records(), nil
	}
	record, lookupError := registry.Lookup(target)
	if lookupError != nil {
		return nil, lookupError
	}
	return []Record{record}, nil
}

// Records returns a copy of the records in registry order.
func (registry *Registry) Records() []Record {
	return append([]Record{}, registry.records...)
}

// Names returns the registered names in registry order.
func (registry *Registry) Names() []string {
	return lo.Map(registry.records, func(record Record, _ int) string {
		return record.Name
	})
}

// Len returns the number of registered repositories.
func (registry *Registry) Len() int {
	return len(registry.records)
}
