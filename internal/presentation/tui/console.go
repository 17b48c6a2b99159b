package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Console prints user-facing messages. Colors are only used on terminals.
// Safe for concurrent use.
type Console struct {
	out     io.Writer
	err     io.Writer
	profile termenv.Profile
	mu      sync.Mutex
}

// NewConsole writes system messages to out and diagnostics to errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{
		out:     out,
		err:     errOut,
		profile: profileFor(errOut),
	}
}

// NewStdConsole uses the process' stdout and stderr.
func NewStdConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr)
}

func profileFor(w io.Writer) termenv.Profile {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Profile returns the color profile in use.
func (c *Console) Profile() termenv.Profile {
	return c.profile
}

// Banner prints the startup banner.
func (c *Console) Banner(version, path, mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	PrintBanner(c.out, c.profile, version, path, mode)
}

// Info prints a standardized system message.
func (c *Console) Info(format string, args ...any) {
	c.print(c.out, ">>>", "#818cf8", format, args...)
}

// Warn prints a warning to the diagnostics stream.
func (c *Console) Warn(format string, args ...any) {
	c.print(c.err, "Warning:", "#fbbf24", format, args...)
}

// Error prints an error to the diagnostics stream.
func (c *Console) Error(format string, args ...any) {
	c.print(c.err, "Error:", "#fb7185", format, args...)
}

// Write lets the console stand in as the executor's diagnostics writer.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err.Write(p)
}

func (c *Console) print(w io.Writer, prefix, color, format string, args ...any) {
	label := c.profile.String(prefix).Foreground(c.profile.Color(color))
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(w, "%s %s\n", label, fmt.Sprintf(format, args...))
}
