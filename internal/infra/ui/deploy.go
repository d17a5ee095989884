// Where: internal/infra/ui/deploy.go
// What: High-level output surface used by workflows.
// Why: Keep deploy output readable while allowing emoji to be toggled.
package ui

import (
	"fmt"
	"io"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by workflows.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewDeployUI returns a UserInterface for deploy and package output.
func NewDeployUI(out io.Writer, emojiEnabled bool) UserInterface {
	return deployUI{
		out:     out,
		console: NewWithEmoji(out, emojiEnabled),
	}
}

type deployUI struct {
	out     io.Writer
	console *Console
}

func (d deployUI) Info(msg string) {
	fmt.Fprintln(d.out, msg)
}

func (d deployUI) Warn(msg string) {
	d.console.Warn(msg)
}

func (d deployUI) Success(msg string) {
	d.console.Success(msg)
}

func (d deployUI) Block(emoji, title string, rows []KeyValue) {
	d.console.BlockStart(emoji, title)
	for _, kv := range rows {
		d.console.Item(kv.Key, kv.Value)
	}
	d.console.BlockEnd()
}
