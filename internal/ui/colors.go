package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
}

// NewPalette builds a [Palette] from hex colors for titles, success, errors, warnings and muted help text.
func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		label: NewBold(t).Width(labelWidth),
	}
}

const labelWidth = 18

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

// Row renders a fixed-width label followed by a value.
func (p *Palette) Row(label, value string) string {
	return p.label.Render(label) + " " + value
}

// Mark renders a one-character status: ✓ found, ~ search-page fallback, ✗ missing.
func (p *Palette) Mark(found, fallback bool) string {
	switch {
	case found && fallback:
		return p.Warn("~")
	case found:
		return p.OK("✓")
	default:
		return p.Err("✗")
	}
}

// Title renders s with the default palette. The remaining package-level helpers do the same for their style.
func Title(s string) string { return styles.Title(s) }
func OK(s string) string    { return styles.OK(s) }
func Err(s string) string   { return styles.Err(s) }
func Warn(s string) string  { return styles.Warn(s) }
func Help(s string) string  { return styles.Help(s) }

func Row(label, value string) string { return styles.Row(label, value) }

func Mark(found, fallback bool) string { return styles.Mark(found, fallback) }

// Rowf is [Row] with a formatted value.
func Rowf(label, format string, args ...any) string {
	return styles.Row(label, fmt.Sprintf(format, args...))
}
