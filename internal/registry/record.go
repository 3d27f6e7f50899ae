package registry

import "github.com/temirov/gitfleet/internal/vcs"

// Kind distinguishes the project from its libraries.
type Kind string

// Repository kinds.
const (
	KindProject Kind = "project"
	KindLibrary Kind = "library"
)

// Record is one registered repository.
type Record struct {
	Name      string
	Kind      Kind
	Path      string
	RemoteURL string
	Handle    vcs.Repository
}
