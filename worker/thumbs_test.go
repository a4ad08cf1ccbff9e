package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func wait(t *testing.T, ch <-chan image.Image) (image.Image, bool) {
	t.Helper()
	select {
	case img, ok := <-ch:
		return img, ok
	case <-time.After(2 * time.Second):
		t.Fatal("thumbnail not delivered")
		return nil, false
	}
}

func TestThumbCacheSharesOneFetch(t *testing.T) {
	data := pngBytes(t, 4, 4)
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewThumbCache(FetcherFunc(func(ctx context.Context, file string) ([]byte, error) {
		calls.Add(1)
		<-release
		return data, nil
	}))
	defer c.Close()

	chans := make([]<-chan image.Image, 5)
	for i := range chans {
		chans[i] = c.Thumbnail("a.png")
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	var first image.Image
	for i, ch := range chans {
		img, ok := wait(t, ch)
		if !ok || img == nil {
			t.Fatalf("waiter %d got no image", i)
		}
		if first == nil {
			first = img
		} else if img != first {
			t.Errorf("waiter %d got a different image", i)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}

	// Cached: delivered immediately, no fetch.
	ch := c.Thumbnail("a.png")
	select {
	case img := <-ch:
		if img != first {
			t.Error("cached image differs")
		}
	default:
		t.Error("cached thumbnail should be ready at once")
	}
	if calls.Load() != 1 || c.Len() != 1 {
		t.Errorf("calls = %d, Len = %d; want 1, 1", calls.Load(), c.Len())
	}
}

func TestThumbCacheFailureClosesChannel(t *testing.T) {
	c := NewThumbCache(FetcherFunc(func(ctx context.Context, file string) ([]byte, error) {
		if file == "bad.jpg" {
			return []byte("not an image"), nil
		}
		return nil, errors.New("offline")
	}))
	defer c.Close()

	for _, f := range []string{"bad.jpg", "gone.png"} {
		if img, ok := wait(t, c.Thumbnail(f)); ok || img != nil {
			t.Errorf("Thumbnail(%s) delivered %v, want closed channel", f, img)
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestThumbCacheDownscale(t *testing.T) {
	data := pngBytes(t, 100, 50)
	c := NewThumbCache(FetcherFunc(func(ctx context.Context, file string) ([]byte, error) {
		return data, nil
	}))
	c.MaxSize = 20
	defer c.Close()

	img, ok := wait(t, c.Thumbnail("wide.png"))
	if !ok {
		t.Fatal("no image")
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", b)
	}
}

func TestDownscaleKeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if got := downscale(img, 16); got != image.Image(img) {
		t.Error("small image should be returned as is")
	}
	if got := downscale(img, 0); got != image.Image(img) {
		t.Error("size 0 should keep the image")
	}
}

func TestHTTPFetcher(t *testing.T) {
	data := pngBytes(t, 2, 2)
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path != "/thumbs/wine/a b.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	f := HTTPFetcher(srv.Client(), srv.URL+"/thumbs/")
	got, err := f.Fetch(context.Background(), "/wine/a b.png")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("fetched bytes differ")
	}
	if _, err := f.Fetch(context.Background(), "missing.png"); err == nil {
		t.Error("404 should fail")
	}
}

func TestChannelFetcher(t *testing.T) {
	ch := NewChannel(HandlerFunc(func(ctx context.Context, req Request) (Reply, error) {
		return Reply{Type: ReplyThumb, File: req.File, Data: []byte(req.File)}, nil
	}))
	defer ch.Close()
	got, err := ChannelFetcher(ch).Fetch(context.Background(), "x.jpg")
	if err != nil || string(got) != "x.jpg" {
		t.Errorf("Fetch = %q, %v", got, err)
	}
}
