//go:build !screen

package display

import "github.com/ZaparooProject/go-mfrc522"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

func newFramebuffer(Config, mfrc522.Logger) (Display, error) {
	return nil, ErrScreenNotCompiled
}
