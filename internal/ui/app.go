package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/SlabPlan/internal/export"
	pieceimporter "github.com/piwi3910/SlabPlan/internal/importer"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/optimizer"
	"github.com/piwi3910/SlabPlan/internal/project"
	"github.com/piwi3910/SlabPlan/internal/ui/widgets"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// previewRatio is the pixels per mm used for on-screen sheets. Exports use
// the configured pixel ratio instead.
const previewRatio = 0.5

// Tab positions.
const (
	tabPieces = iota
	tabSettings
	tabResults
)

// Optimizer performs one optimization round-trip.
type Optimizer interface {
	Optimize(ctx context.Context, req model.OptimizationRequest) (*model.PlacementResult, error)
}

// App holds all application state and UI references.
type App struct {
	app        fyne.App
	window     fyne.Window
	config     model.AppConfig
	configPath string
	job        model.Job
	history    *History

	view      *view.View
	optimizer Optimizer
	exporter  *export.Exporter
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc

	tabs *container.AppTabs

	// UI references for dynamic updates
	piecesContainer *fyne.Container
	resultContainer *fyne.Container
	settingsPanel   *fyne.Container
}

func NewApp(ctx context.Context, application fyne.App, window fyne.Window, cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	job := model.NewJob()
	cfg.App.ApplyToRequest(&job.Request)

	a := &App{
		app:        application,
		window:     window,
		config:     cfg.App,
		configPath: cfg.ConfigPath,
		job:        job,
		history:    NewHistory(),
		view:       view.New(view.WithLogger(logger)),
		optimizer:  cfg.Optimizer,
		exporter:   export.NewExporter(logger),
		logger:     logger,
	}
	if a.configPath == "" {
		a.configPath = project.DefaultConfigPath()
	}
	if a.optimizer == nil {
		a.optimizer = newOptimizer(a.config, logger)
	}
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.view.OnChange(func(view.State) {
		fyne.Do(a.refreshResults)
	})
	return a
}

func newOptimizer(cfg model.AppConfig, logger *log.Logger) Optimizer {
	return optimizer.New(cfg.OptimizerURL,
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second,
		optimizer.WithLogger(logger),
	)
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Job", func() {
			a.newJob()
		}),
		fyne.NewMenuItem("Open Job...", func() {
			a.loadJob()
		}),
		fyne.NewMenuItem("Save Job...", func() {
			a.saveJob()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Pieces from CSV/Excel...", func() {
			a.importPieces()
		}),
		fyne.NewMenuItem("Open Result...", func() {
			a.loadResult()
		}),
		fyne.NewMenuItem("Save Result...", func() {
			a.saveResult()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF Report...", func() {
			a.exportReport()
		}),
		fyne.NewMenuItem("Export Labels...", func() {
			a.exportLabels()
		}),
		fyne.NewMenuItem("Export DXF...", func() {
			a.exportDXF()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", func() {
			a.showPreferencesDialog()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	undoItem := fyne.NewMenuItem("Undo", a.undo)
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem := fyne.NewMenuItem("Redo", a.redo)
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}

	editMenu := fyne.NewMenu("Edit",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Pieces", func() {
			a.pushHistory("Clear Pieces")
			a.job.Request.Pieces = nil
			a.refreshPiecesList()
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Optimize", func() {
			a.runOptimize()
		}),
		fyne.NewMenuItem("Request Options...", func() {
			a.showRequestOptionsDialog()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			a.showAboutDialog()
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))

	for _, item := range []*fyne.MenuItem{undoItem, redoItem} {
		action := item.Action
		a.window.Canvas().AddShortcut(item.Shortcut, func(fyne.Shortcut) { action() })
	}
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About SlabPlan",
		"SlabPlan, cutting plan viewer\n\n"+
			"Sends piece lists to a cutting-stock optimization service\n"+
			"and renders the returned plan as sheets, reports and labels.\n\n"+
			fmt.Sprintf("Optimizer: %s", a.config.OptimizerURL),
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	piecesTab := container.NewTabItem("Pieces", a.buildPiecesPanel())
	settingsTab := container.NewTabItem("Material", a.buildSettingsPanel())
	resultsTab := container.NewTabItem("Results", a.buildResultsPanel())

	a.tabs = container.NewAppTabs(piecesTab, settingsTab, resultsTab)
	a.tabs.SetTabLocation(container.TabLocationTop)

	return a.tabs
}

// ─── History ───────────────────────────────────────────────

func (a *App) pushHistory(label string) {
	a.history.Push(MakeSnapshot(a.job.Request, label))
}

func (a *App) undo() {
	s, ok := a.history.Undo(MakeSnapshot(a.job.Request, "current"))
	if !ok {
		return
	}
	s.Restore(&a.job.Request)
	a.refreshPiecesList()
	a.refreshSettings()
}

func (a *App) redo() {
	s, ok := a.history.Redo(MakeSnapshot(a.job.Request, "current"))
	if !ok {
		return
	}
	s.Restore(&a.job.Request)
	a.refreshPiecesList()
	a.refreshSettings()
}

// ─── Pieces Panel ──────────────────────────────────────────

func (a *App) buildPiecesPanel() fyne.CanvasObject {
	a.piecesContainer = container.NewVBox()
	a.refreshPiecesList()

	addBtn := widget.NewButtonWithIcon("Add Piece", theme.ContentAddIcon(), func() {
		a.showPieceDialog(-1)
	})
	importBtn := widget.NewButtonWithIcon("Import...", theme.FolderOpenIcon(), func() {
		a.importPieces()
	})
	optimizeBtn := widget.NewButtonWithIcon("Optimize", theme.MediaPlayIcon(), func() {
		a.runOptimize()
	})
	optimizeBtn.Importance = widget.HighImportance

	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Pieces", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			importBtn,
			addBtn,
			optimizeBtn,
		),
		nil, nil, nil,
		container.NewVScroll(a.piecesContainer),
	)
}

func (a *App) refreshPiecesList() {
	a.piecesContainer.RemoveAll()

	pieces := a.job.Request.Pieces
	if len(pieces) == 0 {
		a.piecesContainer.Add(widget.NewLabel("No pieces added yet. Click 'Add Piece' or import a spreadsheet to begin."))
		return
	}

	header := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("Id", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Width (mm)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Height (mm)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Qty", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(""),
		widget.NewLabel(""),
	)
	a.piecesContainer.Add(header)
	a.piecesContainer.Add(widget.NewSeparator())

	for i := range pieces {
		idx := i
		p := pieces[idx]
		row := container.NewGridWithColumns(6,
			widget.NewLabel(p.ID),
			widget.NewLabel(fmt.Sprintf("%.1f", p.Width)),
			widget.NewLabel(fmt.Sprintf("%.1f", p.Height)),
			widget.NewLabel(fmt.Sprintf("%d", p.Count())),
			newIconButtonWithTooltip(theme.DocumentCreateIcon(), "Edit piece", func() {
				a.showPieceDialog(idx)
			}),
			newIconButtonWithTooltip(theme.DeleteIcon(), "Remove piece", func() {
				a.pushHistory("Remove Piece")
				a.job.Request.Pieces = append(a.job.Request.Pieces[:idx], a.job.Request.Pieces[idx+1:]...)
				a.refreshPiecesList()
			}),
		)
		a.piecesContainer.Add(row)
	}

	a.piecesContainer.Add(widget.NewSeparator())
	a.piecesContainer.Add(widget.NewLabel(fmt.Sprintf("%d piece types, %d pieces in total", len(pieces), a.job.Request.TotalPieces())))
}

// showPieceDialog adds a piece when idx is negative and edits pieces[idx]
// otherwise.
func (a *App) showPieceDialog(idx int) {
	title, confirm := "Add Piece", "Add"
	current := model.NewRequestPiece(fmt.Sprintf("piece%d", len(a.job.Request.Pieces)+1), 0, 0, 1)
	if idx >= 0 {
		title, confirm = "Edit Piece", "Save"
		current = a.job.Request.Pieces[idx]
	}

	idEntry := widget.NewEntry()
	idEntry.SetPlaceHolder("Piece id")
	idEntry.SetText(current.ID)

	widthEntry := widget.NewEntry()
	widthEntry.SetPlaceHolder("Width in mm")
	heightEntry := widget.NewEntry()
	heightEntry.SetPlaceHolder("Height in mm")
	if idx >= 0 {
		widthEntry.SetText(fmt.Sprintf("%.1f", current.Width))
		heightEntry.SetText(fmt.Sprintf("%.1f", current.Height))
	}

	qtyEntry := widget.NewEntry()
	qtyEntry.SetText(strconv.Itoa(current.Count()))

	form := dialog.NewForm(title, confirm, "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Id", idEntry),
			widget.NewFormItem("Width (mm)", widthEntry),
			widget.NewFormItem("Height (mm)", heightEntry),
			widget.NewFormItem("Quantity", qtyEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			w, _ := strconv.ParseFloat(widthEntry.Text, 64)
			h, _ := strconv.ParseFloat(heightEntry.Text, 64)
			q, _ := strconv.Atoi(qtyEntry.Text)
			if w <= 0 || h <= 0 || q <= 0 {
				dialog.ShowError(fmt.Errorf("width, height, and quantity must be > 0"), a.window)
				return
			}

			piece := model.NewRequestPiece(strings.TrimSpace(idEntry.Text), w, h, q)
			if idx >= 0 {
				a.pushHistory("Edit Piece")
				a.job.Request.Pieces[idx] = piece
			} else {
				a.pushHistory("Add Piece")
				a.job.Request.Pieces = append(a.job.Request.Pieces, piece)
			}
			a.refreshPiecesList()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 300))
	form.Show()
}

// ─── Material Panel ────────────────────────────────────────

func (a *App) buildSettingsPanel() fyne.CanvasObject {
	a.settingsPanel = container.NewVBox()
	a.refreshSettings()
	return container.NewVScroll(a.settingsPanel)
}

// refreshSettings rebuilds the material form from the current request.
func (a *App) refreshSettings() {
	if a.settingsPanel == nil {
		return
	}
	req := &a.job.Request

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(fmt.Sprintf("%.1f", *val))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
			}
		}
		return e
	}

	heightEntry := floatEntry(&req.Sheet.Height)
	materialSelect := widget.NewSelect([]string{"Sheet", "Roll"}, func(selected string) {
		if selected == "Roll" {
			req.MaterialType = model.MaterialRoll
			heightEntry.Disable()
		} else {
			req.MaterialType = model.MaterialSheet
			heightEntry.Enable()
		}
	})
	if req.MaterialType == model.MaterialRoll {
		materialSelect.SetSelected("Roll")
	} else {
		materialSelect.SetSelected("Sheet")
	}

	grainCheck := widget.NewCheck("", func(b bool) {
		req.RespectGrain = &b
	})
	grainCheck.Checked = req.RespectGrain != nil && *req.RespectGrain

	materialSection := widget.NewCard("Material", "Roll requests ignore the height; the optimizer reports the consumed length",
		container.NewGridWithColumns(2,
			widget.NewLabel("Material Type"), materialSelect,
			widget.NewLabel("Width (mm)"), floatEntry(&req.Sheet.Width),
			widget.NewLabel("Height (mm)"), heightEntry,
			widget.NewLabel("Kerf / Blade Width (mm)"), floatEntry(&req.Kerf),
			widget.NewLabel("Respect Grain"), grainCheck,
		))

	presetNames := make([]string, len(sheetPresets))
	for i, p := range sheetPresets {
		presetNames[i] = p.Label
	}
	presetSelect := widget.NewSelect(presetNames, func(selected string) {
		for _, p := range sheetPresets {
			if p.Label == selected && p.Width > 0 {
				req.Sheet = model.Dimensions{Width: p.Width, Height: p.Height}
				a.refreshSettings()
				return
			}
		}
	})
	presetSelect.PlaceHolder = "Select a preset size..."

	advancedBtn := widget.NewButtonWithIcon("Request Options...", theme.SettingsIcon(), func() {
		a.showRequestOptionsDialog()
	})

	a.settingsPanel.RemoveAll()
	a.settingsPanel.Add(materialSection)
	a.settingsPanel.Add(widget.NewCard("Presets", "", presetSelect))
	a.settingsPanel.Add(container.NewHBox(layout.NewSpacer(), advancedBtn))
	a.settingsPanel.Refresh()
}

// sheetPreset defines a common sheet size for quick selection.
type sheetPreset struct {
	Label  string
	Width  float64
	Height float64
}

var sheetPresets = []sheetPreset{
	{Label: "Custom", Width: 0, Height: 0},
	{Label: "Full Sheet (2440 x 1220)", Width: 2440, Height: 1220},
	{Label: "Half Sheet (1220 x 1220)", Width: 1220, Height: 1220},
	{Label: "Large Sheet (3050 x 1525)", Width: 3050, Height: 1525},
	{Label: "Euro Full (2500 x 1250)", Width: 2500, Height: 1250},
	{Label: "Euro Half (1250 x 1250)", Width: 1250, Height: 1250},
}

// ─── Results Panel ─────────────────────────────────────────

func (a *App) buildResultsPanel() fyne.CanvasObject {
	a.resultContainer = container.NewStack()
	a.refreshResults()
	return a.resultContainer
}

// refreshResults redraws the results tab from the view's current state.
// It must run on the UI goroutine.
func (a *App) refreshResults() {
	if a.resultContainer == nil {
		return
	}
	snap := a.view.Snapshot()
	a.resultContainer.RemoveAll()

	switch snap.State {
	case view.Idle:
		a.resultContainer.Add(widget.NewLabel("No results yet. Add pieces, then click Optimize."))

	case view.Loading:
		a.resultContainer.Add(container.NewCenter(container.NewVBox(
			widget.NewLabel("Optimizing..."),
			widget.NewProgressBarInfinite(),
		)))

	case view.Error:
		msg := widget.NewLabel(fmt.Sprintf("Optimization failed: %v", snap.Err))
		msg.Importance = widget.DangerImportance
		msg.Wrapping = fyne.TextWrapWord
		retry := widget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), a.runOptimize)
		a.resultContainer.Add(container.NewVBox(msg, container.NewHBox(retry)))

	case view.Empty:
		msg := widget.NewLabel("The optimizer returned no sheets.")
		msg.Importance = widget.WarningImportance
		a.resultContainer.Add(container.NewVBox(msg, widgets.NewMetricsPanel(snap.Display)))

	case view.Populated:
		toolbar := container.NewHBox(
			widget.NewLabelWithStyle(a.job.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			newIconButtonWithTooltip(theme.DocumentPrintIcon(), "Export PDF report", a.exportReport),
			newIconButtonWithTooltip(theme.ListIcon(), "Export piece labels", a.exportLabels),
			newIconButtonWithTooltip(theme.FileApplicationIcon(), "Export DXF drawing", a.exportDXF),
		)
		sheets := widgets.RenderSheetResults(a.view.RenderSheets(previewRatio), snap.Result.Material(), a.view.Colors().Legend())
		a.resultContainer.Add(container.NewBorder(
			toolbar, nil, nil,
			container.NewVScroll(widgets.NewMetricsPanel(snap.Display)),
			sheets,
		))
	}
	a.resultContainer.Refresh()
}

// ─── Actions ───────────────────────────────────────────────

func (a *App) runOptimize() {
	req := a.job.Request
	req.Pieces = copyPieces(req.Pieces)
	if err := req.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.tabs.SelectIndex(tabResults)

	go func() {
		err := a.view.Run(a.ctx, func(ctx context.Context) (*model.PlacementResult, error) {
			return a.optimizer.Optimize(ctx, req)
		})
		if err != nil {
			return
		}
		result := a.view.Snapshot().Result
		fyne.Do(func() {
			a.job.Result = result
		})
	}()
}

// requirePopulated returns the displayed result or tells the user there is
// nothing to export.
func (a *App) requirePopulated() (*model.PlacementResult, bool) {
	snap := a.view.Snapshot()
	if snap.State != view.Populated || snap.Result == nil {
		dialog.ShowInformation("No results", "Run the optimizer first before exporting.", a.window)
		return nil, false
	}
	return snap.Result, true
}

func (a *App) exportReport() {
	if _, ok := a.requirePopulated(); !ok {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		progress := dialog.NewCustomWithoutButtons("Exporting", widget.NewProgressBarInfinite(), a.window)
		progress.Show()

		go func() {
			defer writer.Close()
			doc, err := a.view.Export(a.ctx, a.exporter, a.config.PixelRatio, export.Options{Title: a.job.Name})
			if err == nil {
				_, err = doc.WriteTo(writer)
			}
			fyne.Do(func() {
				progress.Hide()
				if err != nil {
					dialog.ShowError(fmt.Errorf("export failed: %w", err), a.window)
					return
				}
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("Report saved to %s (%d pages)", writer.URI().Path(), doc.PageCount()), a.window)
			})
		}()
	}, a.window)
	d.SetFileName(a.config.ExportFileName)
	d.Show()
}

func (a *App) exportLabels() {
	result, ok := a.requirePopulated()
	if !ok {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := export.WriteLabels(writer, *result); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("%d labels saved to %s", len(export.CollectLabelInfos(*result)), writer.URI().Path()), a.window)
	}, a.window)
	d.SetFileName("labels.pdf")
	d.Show()
}

func (a *App) exportDXF() {
	result, ok := a.requirePopulated()
	if !ok {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if err := export.ExportDXF(path, *result); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Drawing saved to %s", path), a.window)
	}, a.window)
	d.SetFileName("cutting-plan.dxf")
	d.Show()
}

// ─── Jobs and Results ──────────────────────────────────────

func (a *App) newJob() {
	a.job = model.NewJob()
	a.config.ApplyToRequest(&a.job.Request)
	a.history.Clear()
	a.refreshPiecesList()
	a.refreshSettings()
}

func (a *App) saveJob() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if err := project.SaveJob(path, a.job); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.rememberFile(path)
	}, a.window)
	d.SetFileName(a.job.Name + ".slabplan")
	d.Show()
}

func (a *App) loadJob() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.openPath(reader.URI().Path())
	}, a.window)
	d.Show()
}

// openPath opens a saved job, or a bare optimizer result when the file is
// not a job.
func (a *App) openPath(path string) {
	job, jobErr := project.LoadJob(path)
	if jobErr == nil {
		a.job = job
		a.history.Clear()
		a.refreshPiecesList()
		a.refreshSettings()
		if job.Result != nil {
			a.view.Show(*job.Result)
		}
		a.rememberFile(path)
		return
	}

	result, err := project.LoadResult(path)
	if err != nil {
		a.logger.Debug("not a job file", "path", path, "err", jobErr)
		dialog.ShowError(err, a.window)
		return
	}
	a.job.Result = &result
	a.view.Show(result)
	a.rememberFile(path)
	if a.tabs != nil {
		a.tabs.SelectIndex(tabResults)
	}
}

func (a *App) loadResult() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		result, err := project.LoadResult(reader.URI().Path())
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.job.Result = &result
		a.view.Show(result)
		a.tabs.SelectIndex(tabResults)
	}, a.window)
	d.Show()
}

func (a *App) saveResult() {
	result, ok := a.requirePopulated()
	if !ok {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		data, err := json.MarshalIndent(result, "", "  ")
		if err == nil {
			_, err = writer.Write(data)
		}
		if err != nil {
			dialog.ShowError(err, a.window)
		}
	}, a.window)
	d.SetFileName("result.json")
	d.Show()
}

func (a *App) rememberFile(path string) {
	a.config.AddRecentFile(path)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("failed to save recent files", "err", err)
	}
}

// ─── Import ────────────────────────────────────────────────

func (a *App) importPieces() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		result := pieceimporter.ImportFile(reader.URI().Path())
		a.handleImportResult(result)
	}, a.window)
}

func (a *App) handleImportResult(result pieceimporter.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}

	for _, w := range result.Warnings {
		a.logger.Warn("import", "warning", w)
	}

	if len(result.Pieces) > 0 {
		a.pushHistory("Import Pieces")
		a.job.Request.Pieces = append(a.job.Request.Pieces, result.Pieces...)
		a.refreshPiecesList()

		msg := fmt.Sprintf("Successfully imported %d piece types.", len(result.Pieces))
		if len(result.Errors) > 0 {
			msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
		}
		dialog.ShowInformation("Import Complete", msg, a.window)
	}
}
