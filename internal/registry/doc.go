// Package registry builds and holds the ordered set of repositories gitfleet manages.
//
// An Initializer clones (or reopens) the project and every library its
// manifest lists, then freezes the result into a Registry: libraries in
// manifest order, project last. The Registry is never mutated afterwards.
package registry
