package glyphscape

import (
	"image"
	"image/color"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
)

// ThumbnailLoader delivers decoded thumbnails asynchronously. The returned
// channel yields the image once and is then closed; it is closed without a
// value when loading fails.
type ThumbnailLoader interface {
	Thumbnail(file string) <-chan image.Image
}

// thumbRequest is a pending thumbnail delivery for a mesh node.
type thumbRequest struct {
	file   string
	ch     <-chan image.Image
	maxDim float64
}

// thumbnailFile returns the file key for a glyph's thumbnail.
func thumbnailFile(dir, id string) string {
	return path.Join(dir, id+".jpg")
}

var placeholderImage *ebiten.Image

// placeholderTexture returns the shared 16x16 grey texture shown until a
// thumbnail arrives.
func placeholderTexture() *ebiten.Image {
	if placeholderImage == nil {
		placeholderImage = ebiten.NewImage(16, 16)
		placeholderImage.Fill(color.RGBA{R: 136, G: 136, B: 136, A: 255})
	}
	return placeholderImage
}

// pollThumbnail checks the node's pending thumbnail without blocking. It
// returns true once the request is resolved, either by swapping in the
// texture or by keeping the placeholder after a failure.
func (n *Node) pollThumbnail() bool {
	req := n.thumb
	if req == nil {
		return true
	}
	if n.disposed {
		n.thumb = nil
		return true
	}
	select {
	case img, ok := <-req.ch:
		n.thumb = nil
		if !ok || img == nil {
			logWarn("failed to load thumbnail %s", req.file)
			return true
		}
		n.applyThumbnail(img, req.maxDim)
		return true
	default:
		return false
	}
}

// applyThumbnail uploads img and resizes the quad so its larger side is at
// most maxDim, never upscaling.
func (n *Node) applyThumbnail(img image.Image, maxDim float64) {
	w, h := imageSize(img)
	if w == 0 || h == 0 {
		return
	}
	scale := min(maxDim/float64(w), maxDim/float64(h), 1)
	n.SetTexture(ebiten.NewImageFromImage(img), true)
	n.setQuad(float64(w)*scale, float64(h)*scale)
}
