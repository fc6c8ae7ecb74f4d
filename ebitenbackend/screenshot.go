package ebitenbackend

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/phanxgames/msgbox"
)

// Screenshot queues a labeled capture of the target. Call FlushScreenshots
// at the end of Draw to write the queued frames.
func (c *Canvas) Screenshot(label string) {
	c.shots = append(c.shots, label)
}

// FlushScreenshots writes one PNG per queued label into ScreenshotDir,
// named with a timestamp and the label. The queue is emptied even when a
// write fails.
func (c *Canvas) FlushScreenshots() error {
	if len(c.shots) == 0 || c.Target == nil {
		return nil
	}
	defer func() { c.shots = c.shots[:0] }()

	dir := c.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("msgbox: screenshot: %w", err)
	}

	bounds := c.Target.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	c.Target.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := time.Now().Format("20060102_150405")
	var errs []error
	for _, label := range c.shots {
		path := filepath.Join(dir, stamp+"_"+msgbox.LabelFileName(label)+".png")
		if err := writePNG(path, img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// unpremultiply converts premultiplied RGBA pixels to straight alpha.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("msgbox: screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("msgbox: screenshot %s: %w", path, err)
	}
	return f.Close()
}
