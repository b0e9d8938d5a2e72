// Package output handles CLI output formatting including verbose mode,
// progress lines and tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
// It is safe for use from the watch loop and a running command at once.
type Output struct {
	config          Config
	mu              sync.Mutex
	progressActive  bool
	progressTotal   int
	progressCurrent int
	progressWidth   int
	progressMessage string
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{config: config}
}

// DefaultConfig returns a Config writing to the process streams, with TTY
// detection on stdout.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Discard returns an Output that writes nowhere.
func Discard() *Output {
	return New(Config{Writer: io.Discard, ErrWriter: io.Discard})
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...any) {
	if !o.config.Verbose {
		return
	}
	o.println(o.config.Writer, format, args...)
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...any) {
	o.println(o.config.Writer, format, args...)
}

// Error prints an error message to the error stream.
func (o *Output) Error(format string, args ...any) {
	o.println(o.config.ErrWriter, format, args...)
}

func (o *Output) println(w io.Writer, format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearProgressLocked()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
	o.redrawProgressLocked()
}

// Table renders rows under headers as a rounded table. Columns listed in
// rightAligned are right-aligned; header cells stay left-aligned.
func (o *Output) Table(headers []string, rows [][]string, rightAligned ...int) {
	if len(headers) == 0 {
		return
	}
	o.Info("%s", RenderTable(headers, rows, rightAligned...))
}

// RenderTable returns the rendered table without printing it.
func RenderTable(headers []string, rows [][]string, rightAligned ...int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// headers keep their case
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	right := make(map[int]bool, len(rightAligned))
	for _, c := range rightAligned {
		right[c] = true
	}
	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// StartProgress begins a progress indicator session. A total of zero or
// less means the total is not known in advance.
func (o *Output) StartProgress(total int) {
	// Suppress progress when not TTY or when verbose mode is enabled
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
	o.progressWidth = 0
	o.progressMessage = ""
}

// UpdateProgress updates the progress indicator in place.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	if message == "" {
		message = "Processing file"
	}
	o.clearProgressLocked()
	o.progressMessage = message
	o.redrawProgressLocked()
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.config.IsTTY || o.config.Verbose {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	o.clearProgressLocked()
	o.progressActive = false
}

func (o *Output) progressLine() string {
	if o.progressTotal > 0 {
		return fmt.Sprintf("%s %d/%d...", o.progressMessage, o.progressCurrent, o.progressTotal)
	}
	return fmt.Sprintf("%s %d...", o.progressMessage, o.progressCurrent)
}

// clearProgressLocked blanks the current progress line. Caller holds mu.
func (o *Output) clearProgressLocked() {
	if !o.progressActive || o.progressWidth == 0 {
		return
	}
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", o.progressWidth)+"\r")
	o.progressWidth = 0
}

// redrawProgressLocked writes the progress line again after a message.
// Caller holds mu.
func (o *Output) redrawProgressLocked() {
	if !o.progressActive || o.progressMessage == "" {
		return
	}
	line := o.progressLine()
	fmt.Fprint(o.config.Writer, "\r"+line)
	o.progressWidth = len(line)
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
