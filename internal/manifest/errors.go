package manifest

import (
	"fmt"
	"strings"
)

const (
	manifestMissingTemplateConstant   = "no manifest matching %s in %s"
	manifestAmbiguousTemplateConstant = "multiple manifests matching %s in %s: %s"
	duplicateLibraryTemplateConstant  = "library %s listed twice in manifest (lines %d and %d)"
	candidateJoinSeparatorConstant    = ", "
	fileNameCriterionTemplateConstant = "file name %q"
	markerCriterionTemplateConstant   = "marker %q"
)

// ManifestNotFoundError reports zero or several manifest candidates.
type ManifestNotFoundError struct {
	Directory  string
	Criterion  string
	Candidates []string
}

// Error lists the candidates when the match was ambiguous.
func (notFoundError ManifestNotFoundError) Error() string {
	if len(notFoundError.Candidates) == 0 {
		return fmt.Sprintf(manifestMissingTemplateConstant, notFoundError.Criterion, notFoundError.Directory)
	}
	return fmt.Sprintf(manifestAmbiguousTemplateConstant, notFoundError.Criterion, notFoundError.Directory, strings.Join(notFoundError.Candidates, candidateJoinSeparatorConstant))
}

// DuplicateLibraryError reports a library name that appears on more than one line.
type DuplicateLibraryError struct {
	Name       string
	FirstLine  int
	SecondLine int
}

// Error names both lines.
func (duplicateError DuplicateLibraryError) Error() string {
	return fmt.Sprintf(duplicateLibraryTemplateConstant, duplicateError.Name, duplicateError.FirstLine, duplicateError.SecondLine)
}
