// Where: internal/infra/ui/legacy.go
// What: Plain-line UserInterface for command plumbing.
// Why: Errors and usage hints should not depend on emoji resolution.
package ui

import (
	"fmt"
	"io"
)

// NewLegacyUI returns a UserInterface that writes plain lines.
func NewLegacyUI(out io.Writer) UserInterface {
	return legacyUI{
		out:     out,
		console: New(out),
	}
}

type legacyUI struct {
	out     io.Writer
	console *Console
}

func (l legacyUI) Info(msg string) {
	fmt.Fprintln(l.out, msg)
}

func (l legacyUI) Warn(msg string) {
	fmt.Fprintln(l.out, msg)
}

func (l legacyUI) Success(msg string) {
	fmt.Fprintln(l.out, msg)
}

func (l legacyUI) Block(emoji, title string, rows []KeyValue) {
	l.console.BlockStart(emoji, title)
	for _, kv := range rows {
		l.console.Item(kv.Key, kv.Value)
	}
	l.console.BlockEnd()
}
