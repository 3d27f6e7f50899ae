package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	readManifestTemplateConstant = "read manifest %s: %w"
	scanManifestTemplateConstant = "scan manifest: %w"
	byteOrderMarkConstant        = "\ufeff"
)

// Parse reads library names, one per line. Surrounding whitespace and line
// terminators are trimmed, blank lines are skipped and order is preserved.
func Parse(reader io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(reader)
	libraryNames := make([]string, 0)
	firstSeenLine := make(map[string]int)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if lineNumber == 1 {
			line = strings.TrimPrefix(line, byteOrderMarkConstant)
		}
		libraryName := strings.TrimSpace(line)
		if len(libraryName) == 0 {
			continue
		}
		if previousLine, duplicated := firstSeenLine[libraryName]; duplicated {
			return nil, DuplicateLibraryError{Name: libraryName, FirstLine: previousLine, SecondLine: lineNumber}
		}
		firstSeenLine[libraryName] = lineNumber
		libraryNames = append(libraryNames, libraryName)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(scanManifestTemplateConstant, scanError)
	}
	return libraryNames, nil
}

// Load parses the manifest stored at manifestPath.
func Load(manifestPath string) ([]string, error) {
	manifestFile, openError := os.Open(manifestPath)
	if openError != nil {
		return nil, fmt.Errorf(readManifestTemplateConstant, manifestPath, openError)
	}
	defer manifestFile.Close()

	libraryNames, parseError := Parse(manifestFile)
	if parseError != nil {
		return nil, fmt.Errorf(readManifestTemplateConstant, manifestPath, parseError)
	}
	return libraryNames, nil
}
