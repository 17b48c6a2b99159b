package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the startup banner with the watched path and mode.
func PrintBanner(w io.Writer, profile termenv.Profile, version, path, mode string) {
	title := profile.String("rewatch").Bold().Foreground(profile.Color("#a78bfa"))
	dim := profile.String(fmt.Sprintf("v%s", version)).Foreground(profile.Color("#6b7280"))

	fmt.Fprintf(w, "%s %s\n", title, dim)
	fmt.Fprintf(w, "  watching %s (%s)\n\n", profile.String(path).Foreground(profile.Color("#818cf8")), mode)
}
