// SlabPlan: cutting plan viewer for sheet and roll goods
//
// Sends a piece list to a cutting-stock optimization service and shows the
// returned plan: sheet images, a paginated PDF report, QR-coded labels and
// a DXF drawing. Without a subcommand the desktop application opens.
//
// Build:
//   go build -ldflags "-X main.version=v1.0.0" -o slabplan ./cmd/slabplan
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"os"

	"github.com/piwi3910/SlabPlan/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
