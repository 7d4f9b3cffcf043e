package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/project"
)

// showPreferencesDialog displays the application settings editor.
func (a *App) showPreferencesDialog() {
	cfg := a.config

	// Helper to create a float entry bound to a pointer
	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
			}
		}
		return e
	}

	intEntry := func(val *int) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(fmt.Sprintf("%d", *val))
		e.OnChanged = func(text string) {
			if v, err := strconv.Atoi(text); err == nil {
				*val = v
			}
		}
		return e
	}

	stringEntry := func(val *string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(*val)
		e.OnChanged = func(text string) { *val = text }
		return e
	}

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	materialSelect := widget.NewSelect([]string{string(model.MaterialSheet), string(model.MaterialRoll)}, func(selected string) {
		cfg.DefaultMaterial = model.MaterialType(selected)
	})
	materialSelect.SetSelected(cfg.DefaultMaterial.String())

	formItems := []*widget.FormItem{
		widget.NewFormItem("Optimizer URL", stringEntry(&cfg.OptimizerURL)),
		widget.NewFormItem("Request Timeout (s)", intEntry(&cfg.RequestTimeoutSeconds)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Material", materialSelect),
		widget.NewFormItem("Default Sheet Width (mm)", floatEntry(&cfg.DefaultSheetWidth)),
		widget.NewFormItem("Default Sheet Height (mm)", floatEntry(&cfg.DefaultSheetHeight)),
		widget.NewFormItem("Default Kerf Width (mm)", floatEntry(&cfg.DefaultKerf)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Export Pixels per mm", floatEntry(&cfg.PixelRatio)),
		widget.NewFormItem("Report File Name", stringEntry(&cfg.ExportFileName)),
		widget.NewFormItem("Preview Server Address", stringEntry(&cfg.ListenAddr)),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			cfg = cfg.Normalize()
			reconnect := cfg.OptimizerURL != a.config.OptimizerURL ||
				cfg.RequestTimeoutSeconds != a.config.RequestTimeoutSeconds
			a.config = cfg
			if reconnect {
				a.optimizer = newOptimizer(cfg, a.logger)
				a.logger.Info("optimizer changed", "url", cfg.OptimizerURL)
			}
			a.app.Settings().SetTheme(ThemeFromConfig(cfg.Theme))

			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
			} else {
				dialog.ShowInformation("Settings Saved", "Application settings have been saved.", a.window)
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 550))
	d.Show()
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(a.configPath, a.config)
}
