// Package prompt provides interactive terminal prompts built on bubbletea.
//
// Prompts are only shown when stdin is a terminal; non-interactive callers
// must pass an explicit flag (for example --yes) instead.
package prompt
