// Package gitcli implements the vcs collaborator by running the git executable
// through execshell, so credential helpers and hooks behave exactly as on the
// command line.
package gitcli
