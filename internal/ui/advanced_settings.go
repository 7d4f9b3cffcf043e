package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// parseOptionalFloat reads an entry that may be left blank. Blank means the
// field is omitted from the request and the optimizer uses its own default.
func parseOptionalFloat(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", text)
	}
	if v <= 0 {
		return nil, fmt.Errorf("value must be > 0, got %g", v)
	}
	return &v, nil
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// showRequestOptionsDialog edits the optional optimizer inputs that are not
// shown on the material tab.
func (a *App) showRequestOptionsDialog() {
	req := &a.job.Request

	optionalEntry := func(val *float64, placeholder string) *widget.Entry {
		e := widget.NewEntry()
		e.SetPlaceHolder(placeholder)
		e.SetText(formatOptionalFloat(val))
		return e
	}

	speedEntry := optionalEntry(req.CuttingSpeedMMS, "optimizer default")
	thicknessEntry := optionalEntry(req.SheetThicknessMM, "optimizer default")
	depthEntry := optionalEntry(req.CutDepthPerPassMM, "optimizer default")

	grainCheck := widget.NewCheck("", nil)
	grainCheck.Checked = req.RespectGrain != nil && *req.RespectGrain

	content := container.NewVBox(
		widget.NewCard("Grain", "Keep pieces in their listed orientation",
			container.NewGridWithColumns(2,
				widget.NewLabel("Respect Grain"), grainCheck,
			)),
		widget.NewCard("Machining", "Used by the optimizer to estimate cutting time; leave blank to omit",
			container.NewGridWithColumns(2,
				widget.NewLabel("Cutting Speed (mm/s)"), speedEntry,
				widget.NewLabel("Sheet Thickness (mm)"), thicknessEntry,
				widget.NewLabel("Cut Depth per Pass (mm)"), depthEntry,
			)),
	)

	d := dialog.NewCustomConfirm("Request Options", "Apply", "Cancel", content, func(ok bool) {
		if !ok {
			return
		}
		speed, err := parseOptionalFloat(speedEntry.Text)
		if err != nil {
			dialog.ShowError(fmt.Errorf("cutting speed: %w", err), a.window)
			return
		}
		thickness, err := parseOptionalFloat(thicknessEntry.Text)
		if err != nil {
			dialog.ShowError(fmt.Errorf("sheet thickness: %w", err), a.window)
			return
		}
		depth, err := parseOptionalFloat(depthEntry.Text)
		if err != nil {
			dialog.ShowError(fmt.Errorf("cut depth per pass: %w", err), a.window)
			return
		}

		grain := grainCheck.Checked
		req.RespectGrain = &grain
		req.CuttingSpeedMMS = speed
		req.SheetThicknessMM = thickness
		req.CutDepthPerPassMM = depth
		a.refreshSettings()
	}, a.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}
