//go:build !linux

package hotkey

import (
	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	toggled chan struct{}
}

func New() Hotkey {
	return &xHotkey{
		hk:      hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
		toggled: make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for {
			<-h.hk.Keydown()
			select {
			case h.toggled <- struct{}{}:
			default:
			}
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	h.hk.Unregister()
}

func (h *xHotkey) Toggled() <-chan struct{} {
	return h.toggled
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+Space)", nil
}
