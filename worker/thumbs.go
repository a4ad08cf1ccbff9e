package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// Fetcher returns the raw bytes of a thumbnail file.
type Fetcher interface {
	Fetch(ctx context.Context, file string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, file string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, file string) ([]byte, error) { return f(ctx, file) }

// ChannelFetcher fetches thumbnails from a worker channel.
func ChannelFetcher(ch *Channel) Fetcher {
	return FetcherFunc(ch.FetchThumb)
}

// HTTPFetcher fetches thumbnails below baseURL. A nil client uses
// http.DefaultClient.
func HTTPFetcher(client *http.Client, baseURL string) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimSuffix(baseURL, "/")
	return FetcherFunc(func(ctx context.Context, file string) ([]byte, error) {
		u := base + "/" + (&url.URL{Path: strings.TrimPrefix(file, "/")}).EscapedPath()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
		}
		return io.ReadAll(resp.Body)
	})
}

// DefaultThumbSize is the longest side thumbnails are scaled down to.
const DefaultThumbSize = 256

// ThumbCache decodes thumbnails once per file and hands the same image to
// every caller. Concurrent requests for an uncached file share one fetch.
type ThumbCache struct {
	fetch Fetcher
	// MaxSize is the longest side of a cached image; larger images are
	// scaled down. Zero keeps the original size.
	MaxSize int

	group  singleflight.Group
	mu     sync.Mutex
	images map[string]image.Image

	ctx    context.Context
	cancel context.CancelFunc
}

// NewThumbCache returns a cache that loads missing thumbnails with f.
func NewThumbCache(f Fetcher) *ThumbCache {
	ctx, cancel := context.WithCancel(context.Background())
	return &ThumbCache{
		fetch:   f,
		MaxSize: DefaultThumbSize,
		images:  map[string]image.Image{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Thumbnail implements glyphscape.ThumbnailLoader. The channel yields the
// image once and is closed; it is closed without a value when the file
// cannot be loaded.
func (c *ThumbCache) Thumbnail(file string) <-chan image.Image {
	out := make(chan image.Image, 1)
	if img, ok := c.cached(file); ok {
		out <- img
		close(out)
		return out
	}
	go func() {
		defer close(out)
		img, err := c.load(file)
		if err != nil {
			logWarn("thumbnail %s: %v", file, err)
			return
		}
		out <- img
	}()
	return out
}

func (c *ThumbCache) cached(file string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[file]
	return img, ok
}

func (c *ThumbCache) load(file string) (image.Image, error) {
	v, err, _ := c.group.Do(file, func() (any, error) {
		if img, ok := c.cached(file); ok {
			return img, nil
		}
		data, err := c.fetch.Fetch(c.ctx, file)
		if err != nil {
			return nil, err
		}
		img, err := decodeThumb(file, data)
		if err != nil {
			return nil, err
		}
		img = downscale(img, c.MaxSize)
		c.mu.Lock()
		c.images[file] = img
		c.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Len returns the number of cached images.
func (c *ThumbCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Close cancels fetches in flight.
func (c *ThumbCache) Close() { c.cancel() }

// decodeThumb decodes data by the type its file extension implies.
func decodeThumb(file string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(path.Ext(file)) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	case ".webp":
		img, err = webp.Decode(r)
	default:
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// downscale scales img so that its longest side is at most size.
func downscale(img image.Image, size int) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if size <= 0 || longest <= size {
		return img
	}
	w := max(b.Dx()*size/longest, 1)
	h := max(b.Dy()*size/longest, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
