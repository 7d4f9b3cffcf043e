package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Optimization service
	OptimizerURL          string `json:"optimizer_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`

	// Defaults applied to new jobs
	DefaultMaterial    MaterialType `json:"default_material"`
	DefaultSheetWidth  float64      `json:"default_sheet_width"`
	DefaultSheetHeight float64      `json:"default_sheet_height"`
	DefaultKerf        float64      `json:"default_kerf"`

	// Rendering and export
	PixelRatio     float64 `json:"pixel_ratio"`      // device pixels per mm when rasterizing
	ExportFileName string  `json:"export_file_name"` // report file name
	ListenAddr     string  `json:"listen_addr"`      // preview server

	// Application preferences
	RecentFiles []string `json:"recent_files"`
	Theme       string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from NewJob().
func DefaultAppConfig() AppConfig {
	job := NewJob()
	return AppConfig{
		OptimizerURL:          "http://127.0.0.1:8000",
		RequestTimeoutSeconds: 60,
		DefaultMaterial:       job.Request.MaterialType,
		DefaultSheetWidth:     job.Request.Sheet.Width,
		DefaultSheetHeight:    job.Request.Sheet.Height,
		DefaultKerf:           job.Request.Kerf,
		PixelRatio:            2.0,
		ExportFileName:        "cutting-plan.pdf",
		ListenAddr:            "127.0.0.1:8080",
		RecentFiles:           []string{},
		Theme:                 "system",
	}
}

// ApplyToRequest copies the default values from AppConfig into a request.
// This is used when creating a new job so it inherits the user's saved defaults.
func (c AppConfig) ApplyToRequest(r *OptimizationRequest) {
	r.MaterialType = c.DefaultMaterial.Normalize()
	r.Sheet = Dimensions{Width: c.DefaultSheetWidth, Height: c.DefaultSheetHeight}
	r.Kerf = c.DefaultKerf
}

// Normalize fills zero values left by older or hand-edited config files.
func (c AppConfig) Normalize() AppConfig {
	d := DefaultAppConfig()
	if c.OptimizerURL == "" {
		c.OptimizerURL = d.OptimizerURL
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}
	if c.PixelRatio <= 0 {
		c.PixelRatio = d.PixelRatio
	}
	if c.ExportFileName == "" {
		c.ExportFileName = d.ExportFileName
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.RecentFiles == nil {
		c.RecentFiles = []string{}
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	c.DefaultMaterial = c.DefaultMaterial.Normalize()
	return c
}

const maxRecentFiles = 10

// AddRecentFile moves path to the front of the recent list.
func (c *AppConfig) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > maxRecentFiles {
		files = files[:maxRecentFiles]
	}
	c.RecentFiles = files
}
