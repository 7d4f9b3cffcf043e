// Package ui provides the SlabPlan desktop application.
//
// This file defines a compact Fyne theme for the dense piece list and
// results layout.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// SlabPlanTheme wraps the default Fyne theme with compact sizing overrides.
type SlabPlanTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewSlabPlanTheme creates a theme following the system light/dark setting.
func NewSlabPlanTheme() *SlabPlanTheme {
	return &SlabPlanTheme{base: theme.DefaultTheme(), system: true}
}

// ThemeFromConfig maps the "light", "dark" or "system" preference to a theme.
func ThemeFromConfig(name string) *SlabPlanTheme {
	t := NewSlabPlanTheme()
	switch name {
	case "light":
		t.SetVariant(theme.VariantLight)
	case "dark":
		t.SetVariant(theme.VariantDark)
	}
	return t
}

// SetVariant pins the theme to a light or dark variant.
func (t *SlabPlanTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
	t.system = false
}

func (t *SlabPlanTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.system {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *SlabPlanTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *SlabPlanTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *SlabPlanTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
