package dispatch

import (
	"io"

	"github.com/pkg/browser"
)

// BrowserOpener opens URLs in the desktop's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	// keep launcher chatter out of the terminal transcript
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}
