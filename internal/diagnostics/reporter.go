package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBold   = "\x1b[1m"
	colorReset  = "\x1b[0m"
)

// Reporter prints diagnostics to a writer, colored when the writer is a
// terminal. It also tracks whether any error was reported.
type Reporter struct {
	out      io.Writer
	color    bool
	json     bool
	hadError bool
}

// NewReporter creates a reporter writing to w. Color is enabled when w is
// os.Stderr or os.Stdout attached to a terminal.
func NewReporter(w io.Writer, jsonOutput bool) *Reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: w, color: color && !jsonOutput, json: jsonOutput}
}

// HadError returns true if any error was reported.
func (r *Reporter) HadError() bool {
	return r.hadError
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
}

// Error reports a compiler error.
func (r *Reporter) Error(err *CompilerError) {
	r.hadError = true
	if r.json {
		r.emitJSON("error", string(err.Code), err)
		return
	}
	if r.color {
		fmt.Fprintf(r.out, "%s%serror%s %s[%s]%s %s: %s\n",
			colorBold, colorRed, colorReset, colorBold, err.Code, colorReset, err.Position, err.Message)
		return
	}
	fmt.Fprintf(r.out, "error [%s] %s: %s\n", err.Code, err.Position, err.Message)
}

// Warn reports a warning.
func (r *Reporter) Warn(w *Warning) {
	if r.json {
		r.emitJSON("warning", string(w.Code), &CompilerError{Code: w.Code, Position: w.Position, Message: w.Message})
		return
	}
	if r.color {
		fmt.Fprintf(r.out, "%s%swarning%s %s[%s]%s %s: %s\n",
			colorBold, colorYellow, colorReset, colorBold, w.Code, colorReset, w.Position, w.Message)
		return
	}
	fmt.Fprintf(r.out, "warning [%s] %s: %s\n", w.Code, w.Position, w.Message)
}

func (r *Reporter) emitJSON(severity, code string, err *CompilerError) {
	d := jsonDiagnostic{
		Severity: severity,
		Code:     code,
		File:     err.Position.File,
		Line:     err.Position.Line,
		Column:   err.Position.Column,
		Message:  err.Message,
	}
	data, jerr := json.Marshal(d)
	if jerr != nil {
		fmt.Fprintf(r.out, "error [%s] %s: %s\n", code, err.Position, err.Message)
		return
	}
	fmt.Fprintln(r.out, string(data))
}
