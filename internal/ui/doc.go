// Package ui styles terminal output for the command line with lipgloss.
//
// Colors come from a single [Palette]. The package-level helpers ([Title], [OK], [Err], [Warn], [Help], [Row],
// [Mark]) use the default one. When output is not a terminal lipgloss drops the escape codes, so the same
// helpers produce plain text in pipes and tests.
package ui
