package glyphscape

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// ExportImage queues a PNG export of the canvas. The scene is rendered
// offscreen at the export scale and written to dir, or to the canvas
// export directory when dir is empty, at the end of the next Draw. The
// on-screen camera is not touched.
func (c *Canvas) ExportImage(dir string) {
	if c.disposed {
		return
	}
	if dir == "" {
		dir = c.exportDir
	}
	c.exports = append(c.exports, dir)
}

// ExportPath returns the file an export into dir is written to.
func (c *Canvas) ExportPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("glyphscape-%s.png", c.id))
}

// flushExports renders the scene once and writes it for every queued
// directory. Called at the end of Canvas.Draw.
func (c *Canvas) flushExports() {
	if len(c.exports) == 0 {
		return
	}
	img := c.renderExport()
	for _, dir := range c.exports {
		if img == nil {
			break
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logError("export: mkdir %s: %v", dir, err)
			continue
		}
		path := c.ExportPath(dir)
		if err := writePNG(path, img); err != nil {
			logError("export: %v", err)
			continue
		}
		logInfo("exported %s", path)
	}
	c.exports = c.exports[:0]
}

// exportCamera returns a copy of the canvas camera that renders the same
// view into an image scale times larger.
func (c *Canvas) exportCamera(scale float64) *Camera {
	cam := c.cam.Copy()
	cam.Viewport = Rect{Width: c.viewport.Width * scale, Height: c.viewport.Height * scale}
	cam.Zoom = c.cam.Zoom * scale
	return cam
}

// renderExport draws the glyphs into a pooled offscreen image and reads
// it back as straight-alpha pixels.
func (c *Canvas) renderExport() *image.NRGBA {
	cam := c.exportCamera(c.exportScale)
	w, h := int(cam.Viewport.Width), int(cam.Viewport.Height)
	if w <= 0 || h <= 0 {
		return nil
	}
	rt := c.pool.Acquire(w, h)
	defer c.pool.Release(rt)
	target := rt.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	target.Fill(c.background().toRGBA())
	c.view.render(target, c.root, cam)

	pixels := make([]byte, 4*w*h)
	target.ReadPixels(pixels)
	return unpremultiply(pixels, w, h)
}

// unpremultiply converts premultiplied RGBA bytes to an NRGBA image.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
