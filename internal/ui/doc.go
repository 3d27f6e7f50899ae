// Package ui renders git command lifecycle events for people watching the terminal.
//
// Structured diagnostics keep flowing through the JSON logger; the console
// logger only exists when the human-readable log format is selected.
package ui
