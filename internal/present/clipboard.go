package present

import "github.com/atotto/clipboard"

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the desktop clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the system clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard backend exists on this machine.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}
