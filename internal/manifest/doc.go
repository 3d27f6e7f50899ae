// Package manifest finds and reads the dependency manifest of a project.
//
// A manifest is a text file at the top level of the project working copy that
// lists one library repository name per line.
package manifest
