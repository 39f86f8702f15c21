// Package hotkey delivers the global Ctrl+Shift+Space chord, which
// pauses and resumes the ambient sounds from any window.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	// Toggled fires once per chord press; releases are not reported.
	Toggled() <-chan struct{}
}
