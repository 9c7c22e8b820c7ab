package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop shows notifications through notify-send on Linux or osascript on
// macOS.
type Desktop struct {
	command  string
	duration time.Duration
	run      Runner
}

// DesktopOptions tunes NewDesktop. Zero values select the platform tool.
type DesktopOptions struct {
	Duration time.Duration
	GOOS     string
	LookPath func(file string) (string, error)
	Run      Runner
}

// NewDesktop detects the notification tool for the platform. Show returns
// ErrUnsupported when none is installed.
func NewDesktop(options DesktopOptions) *Desktop {
	if options.GOOS == "" {
		options.GOOS = runtime.GOOS
	}
	if options.LookPath == nil {
		options.LookPath = exec.LookPath
	}
	if options.Run == nil {
		options.Run = runCommand
	}
	if options.Duration <= 0 {
		options.Duration = 5 * time.Second
	}
	d := &Desktop{duration: options.Duration, run: options.Run}
	var tool string
	switch options.GOOS {
	case "darwin":
		tool = "osascript"
	case "linux", "freebsd", "openbsd", "netbsd":
		tool = "notify-send"
	}
	if tool != "" {
		if path, err := options.LookPath(tool); err == nil {
			d.command = path
		}
	}
	return d
}

// Available reports whether a desktop tool was found.
func (d *Desktop) Available() bool {
	return d.command != ""
}

// Show runs the desktop tool for n.
func (d *Desktop) Show(n Notification) error {
	if d.command == "" {
		return ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var args []string
	if strings.HasSuffix(d.command, "osascript") {
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(n.Message), strconv.Quote(n.Title))
		args = []string{"-e", script}
	} else {
		args = []string{"-t", strconv.FormatInt(d.duration.Milliseconds(), 10), n.Title, n.Message}
	}
	if err := d.run(ctx, d.command, args...); err != nil {
		return fmt.Errorf("%s: %w", d.command, err)
	}
	return nil
}

// Console prints notifications to a writer, coloured when it is a terminal.
type Console struct {
	w      io.Writer
	styles map[Kind]lipgloss.Style
}

// NewConsole returns a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		styles: map[Kind]lipgloss.Style{
			KindInfo:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			KindSuccess: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
			KindWarning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		},
	}
}

// Show writes the styled title followed by the message.
func (c *Console) Show(n Notification) error {
	style, ok := c.styles[n.Kind]
	if !ok {
		style = c.styles[KindInfo]
	}
	_, err := fmt.Fprintf(c.w, "%s\n%s\n", style.Render(n.Title), n.Message)
	return err
}
