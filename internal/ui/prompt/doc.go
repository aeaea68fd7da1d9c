// Package prompt provides the interactive prompts itg shows on a terminal.
//
// Prompts render on stderr with the color profile detected for it, so
// stdout can be piped. Callers check [Interactive] first and fall back to
// flags or errors when no terminal is attached.
//
// Available prompts:
//   - [Confirm]: Yes/No confirmation prompt
//   - [TextInput]: Single-line text input
//   - [Select]: Single selection from a filterable list
//
// [Suggest] ranks candidates by fuzzy match for "did you mean" hints.
package prompt
