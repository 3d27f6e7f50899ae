// Package dispatch applies a single repository action to one registered
// repository or, for the "all" target, to every repository in registry order.
//
// Compound actions that commit consult the main-branch guard immediately before
// their first mutating call; a guarded repository receives a notice instead of
// any change.
package dispatch
