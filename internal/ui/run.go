package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/SlabPlan/internal/model"
)

// Config carries everything the desktop application needs from the command
// line.
type Config struct {
	App        model.AppConfig
	ConfigPath string
	Optimizer  Optimizer // built from App when nil
	Logger     *log.Logger
	OpenPath   string // job or result file to open at start
}

// Run opens the main window and blocks until it is closed. Requests still in
// flight are cancelled on exit.
func Run(ctx context.Context, cfg Config) error {
	application := app.NewWithID("com.piwi3910.slabplan")
	application.Settings().SetTheme(ThemeFromConfig(cfg.App.Theme))

	window := application.NewWindow("SlabPlan: Cutting Plan Viewer")

	appUI := NewApp(ctx, application, window, cfg)
	defer appUI.cancel()

	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1400, 800))
	window.CenterOnScreen()

	if cfg.OpenPath != "" {
		appUI.openPath(cfg.OpenPath)
	}

	window.ShowAndRun()
	return nil
}
