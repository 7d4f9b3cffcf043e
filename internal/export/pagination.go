package export

import "math"

// PageLayout describes a fixed page in mm.
type PageLayout struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	TitleHeight  float64 // header band below the top margin
	Gap          float64 // vertical space between consecutive sheet images
}

// A4Portrait is the default report page.
func A4Portrait() PageLayout {
	return PageLayout{
		PageWidth:    210.0,
		PageHeight:   297.0,
		MarginTop:    10.0,
		MarginBottom: 12.0,
		MarginLeft:   10.0,
		MarginRight:  10.0,
		TitleHeight:  18.0,
		Gap:          5.0,
	}
}

// PrintableWidth is the width between the side margins.
func (l PageLayout) PrintableWidth() float64 {
	return l.PageWidth - l.MarginLeft - l.MarginRight
}

// ContentTop is where images start below the header band.
func (l PageLayout) ContentTop() float64 {
	return l.MarginTop + l.TitleHeight
}

// ContentHeight is the vertical space below the header band.
func (l PageLayout) ContentHeight() float64 {
	return l.PageHeight - l.MarginBottom - l.ContentTop()
}

func (l PageLayout) bottom() float64 {
	return l.PageHeight - l.MarginBottom
}

// ImageSize is the pixel size of a captured image.
type ImageSize struct {
	Width  float64
	Height float64
}

// Rect is a page-space rectangle in mm.
type Rect struct {
	X, Y, W, H float64
}

// Placement positions one image on a page. Offset is the image's vertical
// offset relative to the page's content origin; it is non-zero only for
// continuous slices.
type Placement struct {
	Image  int
	X, Y   float64
	W, H   float64
	Offset float64
	Clip   *Rect
}

// Page is one output page.
type Page struct {
	Placements []Placement
}

// Plan is the full page layout for a document.
type Plan struct {
	Pages []Page
}

// ImageCount returns the number of placements across all pages.
func (p Plan) ImageCount() int {
	n := 0
	for _, pg := range p.Pages {
		n += len(pg.Placements)
	}
	return n
}

// PlanDiscrete places one unbroken image per sheet, in the given order,
// with a running cursor that opens a new page whenever the next image would
// overflow. The first page reserves the title band. An image taller than a
// page's content area is shrunk to fit instead of being split.
func PlanDiscrete(images []ImageSize, l PageLayout) Plan {
	plan := Plan{}
	page := Page{}
	cursor := l.ContentTop()
	fullHeight := l.bottom() - l.MarginTop

	for i, img := range images {
		if !(img.Width > 0) || !(img.Height > 0) {
			continue
		}
		w := l.PrintableWidth()
		h := img.Height * w / img.Width

		if h > fullHeight {
			h = fullHeight
			w = img.Width * h / img.Height
		}
		if cursor+h > l.bottom() && len(page.Placements) > 0 {
			plan.Pages = append(plan.Pages, page)
			page = Page{}
			cursor = l.MarginTop
		}
		if room := l.bottom() - cursor; h > room {
			// Only reachable on an empty first page below the title.
			h = room
			w = img.Width * h / img.Height
		}

		page.Placements = append(page.Placements, Placement{
			Image: i,
			X:     l.MarginLeft + (l.PrintableWidth()-w)/2,
			Y:     cursor,
			W:     w,
			H:     h,
		})
		cursor += h + l.Gap
	}

	if len(page.Placements) > 0 || len(plan.Pages) == 0 {
		plan.Pages = append(plan.Pages, page)
	}
	return plan
}

// sliceEpsilon absorbs float error so an exact multiple of the content
// height does not yield an extra near-empty page.
const sliceEpsilon = 1e-9

// PlanContinuous slices one tall image across as many pages as needed.
// Page n shows the image shifted up by n content heights and clipped to the
// content area, so consecutive pages are contiguous and never overlap.
func PlanContinuous(img ImageSize, l PageLayout) Plan {
	if !(img.Width > 0) || !(img.Height > 0) {
		return Plan{Pages: []Page{{}}}
	}
	w := l.PrintableWidth()
	h := img.Height * w / img.Width
	ch := l.ContentHeight()
	top := l.ContentTop()

	n := int(math.Ceil(h/ch - sliceEpsilon))
	n = max(n, 1)

	plan := Plan{Pages: make([]Page, 0, n)}
	for i := 0; i < n; i++ {
		offset := -float64(i) * ch
		plan.Pages = append(plan.Pages, Page{Placements: []Placement{{
			Image:  0,
			X:      l.MarginLeft,
			Y:      top + offset,
			W:      w,
			H:      h,
			Offset: offset,
			Clip:   &Rect{X: l.MarginLeft, Y: top, W: w, H: ch},
		}}})
	}
	return plan
}
