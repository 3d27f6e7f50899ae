package registry

import (
	"path/filepath"
	"strings"
)

// RemoteNaming derives clone URLs from repository names.
type RemoteNaming struct {
	BaseURL       string
	ProjectSuffix string
	LibraryPrefix string
	LibrarySuffix string
}

// ProjectURL is BaseURL + name + ProjectSuffix.
func (naming RemoteNaming) ProjectURL(projectName string) string {
	return strings.Join([]string{naming.BaseURL, projectName, naming.ProjectSuffix}, "")
}

// LibraryURL is BaseURL + LibraryPrefix + name + LibrarySuffix.
func (naming RemoteNaming) LibraryURL(libraryName string) string {
	return strings.Join([]string{naming.BaseURL, naming.LibraryPrefix, libraryName, naming.LibrarySuffix}, "")
}

// WorkspaceLayout places working copies under a single root.
type WorkspaceLayout struct {
	Root               string
	ProjectDirectory   string
	LibrariesDirectory string
}

// ProjectPath is Root/ProjectDirectory/name.
func (layout WorkspaceLayout) ProjectPath(projectName string) string {
	return filepath.Join(layout.Root, layout.ProjectDirectory, projectName)
}

// LibraryPath is Root/LibrariesDirectory/name.
func (layout WorkspaceLayout) LibraryPath(libraryName string) string {
	return filepath.Join(layout.Root, layout.LibrariesDirectory, libraryName)
}
