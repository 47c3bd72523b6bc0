package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Layout of the timestamp printed in verbose mode.
const timeLayout = "15:04:05.000"

// Human-oriented single-line formatter.
type PrettyFormatter struct {
	verbose bool
	debug   *color.Color
	info    *color.Color
	warn    *color.Color
	err     *color.Color
	faint   *color.Color
}

// Creates a [PrettyFormatter]. Colours are used only when colorize is true.
func NewPrettyFormatter(colorize bool) *PrettyFormatter {
	f := &PrettyFormatter{
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgCyan),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
	}

	for _, c := range []*color.Color{f.debug, f.info, f.warn, f.err, f.faint} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return f
}

// Enables timestamps and group prefixes.
func (f *PrettyFormatter) SetVerbose(verbose bool) {
	f.verbose = verbose
}

// Renders "LEVEL message key=value ..." followed by a newline.
func (f *PrettyFormatter) Format(r slog.Record, groups []string, attrs []slog.Attr) []byte {
	var b bytes.Buffer

	if f.verbose {
		t := r.Time
		if t.IsZero() {
			t = time.Now()
		}
		b.WriteString(f.faint.Sprint(t.Format(timeLayout)))
		b.WriteByte(' ')
	}

	b.WriteString(f.label(r.Level))
	b.WriteByte(' ')

	if f.verbose && len(groups) > 0 {
		b.WriteString(f.faint.Sprint(strings.Join(groups, ".") + ":"))
		b.WriteByte(' ')
	}

	b.WriteString(r.Message)

	for _, a := range attrs {
		f.writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.writeAttr(&b, "", a)
		return true
	})

	b.WriteByte('\n')
	return b.Bytes()
}

// Returns the padded, coloured level label.
func (f *PrettyFormatter) label(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return f.err.Sprint("ERROR")
	case level >= slog.LevelWarn:
		return f.warn.Sprint("WARN ")
	case level >= slog.LevelInfo:
		return f.info.Sprint("INFO ")
	default:
		return f.debug.Sprint("DEBUG")
	}
}

// Writes " key=value", flattening group attributes as "group.key".
func (f *PrettyFormatter) writeAttr(b *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			f.writeAttr(b, key, ga)
		}
		return
	}

	fmt.Fprintf(b, " %s=%s", f.faint.Sprint(key), quote(a.Value.String()))
}

// Quotes s if it is empty or contains whitespace, quotes, or '='.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
