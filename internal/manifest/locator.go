package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	// DefaultMarker is the substring a manifest file name contains when no explicit file name is configured.
	DefaultMarker = "Lib"

	readProjectDirectoryTemplateConstant = "read project directory %s: %w"
)

// Locator finds the manifest among the top-level files of a project working copy.
type Locator struct {
	// FileName, when set, is the exact manifest file name and Marker is ignored.
	FileName string
	Marker   string
}

// Locate returns the path of the single matching regular file. Directories and
// symbolic links never match.
func (locator Locator) Locate(projectDirectory string) (string, error) {
	entries, readError := os.ReadDir(projectDirectory)
	if readError != nil {
		return "", fmt.Errorf(readProjectDirectoryTemplateConstant, projectDirectory, readError)
	}

	fileName := strings.TrimSpace(locator.FileName)
	marker := locator.marker()
	candidates := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		if !entry.Type().IsRegular() {
			return "", false
		}
		if len(fileName) > 0 {
			return entry.Name(), entry.Name() == fileName
		}
		return entry.Name(), strings.Contains(entry.Name(), marker)
	})
	sort.Strings(candidates)

	if len(candidates) != 1 {
		return "", ManifestNotFoundError{Directory: projectDirectory, Criterion: locator.criterion(), Candidates: candidates}
	}
	return filepath.Join(projectDirectory, candidates[0]), nil
}

func (locator Locator) marker() string {
	if marker := strings.TrimSpace(locator.Marker); len(marker) > 0 {
		return marker
	}
	return DefaultMarker
}

func (locator Locator) criterion() string {
	if fileName := strings.TrimSpace(locator.FileName); len(fileName) > 0 {
		return fmt.Sprintf(fileNameCriterionTemplateConstant, fileName)
	}
	return fmt.Sprintf(markerCriterionTemplateConstant, locator.marker())
}
