//go:build screen

package display

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/d21d3q/framebuffer"

	"github.com/ZaparooProject/go-mfrc522"
)

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

// Framebuffer draws on a 16 bpp Linux framebuffer.
type Framebuffer struct {
	closer     io.Closer
	renderer   *Renderer
	logger     mfrc522.Logger
	pixels     []byte
	backBuffer []byte
	stride     int
	mu         sync.Mutex
}

func newFramebuffer(cfg Config, logger mfrc522.Logger) (Display, error) {
	def := DefaultConfig()
	if cfg.Device == "" {
		cfg.Device = def.Device
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}

	fb, err := framebuffer.OpenFrameBuffer(cfg.Device, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer: %w", err)
	}
	closer, _ := any(fb).(io.Closer)
	release := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
	varInfo, err := fb.VarScreenInfo()
	if err != nil {
		release()
		return nil, fmt.Errorf("get variable screen info: %w", err)
	}
	fixedInfo, err := fb.FixScreenInfo()
	if err != nil {
		release()
		return nil, fmt.Errorf("get fixed screen info: %w", err)
	}
	if varInfo.BitsPerPixel != 16 {
		release()
		return nil, fmt.Errorf("framebuffer %s is %d bpp, want 16", cfg.Device, varInfo.BitsPerPixel)
	}
	pixels, err := fb.Pixels()
	if err != nil {
		release()
		return nil, fmt.Errorf("get pixel data: %w", err)
	}

	renderer, err := NewRenderer(int(varInfo.XRes), int(varInfo.YRes), cfg.FontPath, cfg.FontSize)
	if err != nil {
		logger.Warnf("display: failed to load font %s: %v", cfg.FontPath, err)
	}
	logger.Infof("display: framebuffer %dx%d, stride %d bytes", varInfo.XRes, varInfo.YRes, fixedInfo.LineLength)

	return &Framebuffer{
		closer:   closer,
		renderer: renderer,
		logger:   logger,
		pixels:   pixels,
		stride:   int(fixedInfo.LineLength),
	}, nil
}

func (f *Framebuffer) draw(line1, line2 string, background color.Color) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pixels == nil {
		return
	}
	img := f.renderer.Render(line1, line2, background)
	f.backBuffer = PackRGB565(img, f.stride, f.backBuffer)
	copy(f.pixels, f.backBuffer)
}

// ShowMessage implements Display.
func (f *Framebuffer) ShowMessage(line1, line2 string) {
	f.draw(line1, line2, colorIdle)
}

// ShowEvent implements Display.
func (f *Framebuffer) ShowEvent(name string, entry bool) {
	line1, line2 := EventLines(name, entry)
	f.draw(line1, line2, eventBackground(entry))
}

// Close implements Display.
func (f *Framebuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pixels = nil
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	if err != nil {
		return fmt.Errorf("close framebuffer: %w", err)
	}
	return nil
}
