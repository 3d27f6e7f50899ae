// Package gitrepo parses and compares git remote URLs.
//
// The registry initializer uses SameRepository to decide whether a directory
// that already exists in the workspace is a clone of the expected remote.
package gitrepo
