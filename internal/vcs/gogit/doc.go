// Package gogit implements the vcs collaborator on top of go-git.
//
// No git executable is needed for local operations. HTTPS remotes
// authenticate with a token taken from the environment; see CredentialSource.
package gogit
