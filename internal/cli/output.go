package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type outputOptions struct {
	JSON    bool
	NoColor bool
}

type output struct {
	out  io.Writer
	err  io.Writer
	json bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
	bold   *color.Color
}

func newOutput(stdout, stderr io.Writer, opts outputOptions) *output {
	o := &output{
		out:    stdout,
		err:    stderr,
		json:   opts.JSON,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		gray:   color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
	if opts.NoColor || !isTerminal(stdout) {
		for _, c := range []*color.Color{o.green, o.yellow, o.red, o.gray, o.bold} {
			c.DisableColor()
		}
	}
	return o
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (o *output) Green(s string) string  { return o.green.Sprint(s) }
func (o *output) Yellow(s string) string { return o.yellow.Sprint(s) }
func (o *output) Red(s string) string    { return o.red.Sprint(s) }
func (o *output) Gray(s string) string   { return o.gray.Sprint(s) }
func (o *output) Bold(s string) string   { return o.bold.Sprint(s) }

func (o *output) Print(msg string) {
	if o.json {
		return
	}
	fmt.Fprintln(o.out, msg)
}

func (o *output) Field(label, value string) {
	if value == "" {
		return
	}
	o.Print(o.Gray(fmt.Sprintf("%-12s", label+":")) + " " + value)
}

func (o *output) Warn(msg string) {
	if o.json {
		return
	}
	fmt.Fprintln(o.err, o.Yellow(msg))
}

func (o *output) Error(msg string) {
	fmt.Fprintln(o.err, o.Red(msg))
}

func (o *output) EmitJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
