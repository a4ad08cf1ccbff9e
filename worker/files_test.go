package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/phanxgames/glyphscape/dataset"
)

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFileHandlerUnzip(t *testing.T) {
	root := t.TempDir()
	ch := NewChannel(&FileHandler{Root: root})
	defer ch.Close()

	data := makeZip(t, map[string]string{
		"thumbs/a.jpg":  "a",
		"thumbs/b.PNG":  "b",
		"thumbs/c.webp": "c",
		"readme.txt":    "x",
		"deep/dir/":     "",
	})
	folder, images, err := ch.Unzip(context.Background(), "thumbs.zip", data)
	if err != nil {
		t.Fatal(err)
	}
	if folder != "thumbs" {
		t.Errorf("folder = %q, want thumbs", folder)
	}
	if !reflect.DeepEqual(images, []string{"a.jpg", "b.PNG", "c.webp"}) {
		t.Errorf("images = %v", images)
	}
	if _, err := os.Stat(filepath.Join(root, "thumbs", "readme.txt")); err != nil {
		t.Errorf("flat unpack missing readme: %v", err)
	}

	got, err := ch.FetchThumb(context.Background(), "/thumbs/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a" {
		t.Errorf("FetchThumb = %q, want a", got)
	}
}

func TestFileHandlerUnzipInvalid(t *testing.T) {
	ch := NewChannel(&FileHandler{Root: t.TempDir()})
	defer ch.Close()
	if _, _, err := ch.Unzip(context.Background(), "x.zip", []byte("not a zip")); err == nil {
		t.Error("Unzip of garbage should fail")
	}
}

func TestFileHandlerProcessAndLoad(t *testing.T) {
	root := t.TempDir()
	ch := NewChannel(&FileHandler{Root: root, Compress: true})
	defer ch.Close()

	csv := "size,weight,map-x,map-y\n1,10,0,0\n2,20,1,1\n"
	coll, err := ch.Process(context.Background(), "animals.csv", []byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(coll) != 1 || coll[0].Dataset != "animals" || coll[0].Source != "worker" {
		t.Fatalf("collection = %+v", coll)
	}

	p := dataset.NewProvider(Source{Channel: ch}, coll)
	ds, err := p.Load(context.Background(), "animals", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Glyphs) != 2 {
		t.Errorf("len(Glyphs) = %d, want 2", len(ds.Glyphs))
	}
	if !reflect.DeepEqual(ds.Algorithms, []string{"map"}) {
		t.Errorf("Algorithms = %v, want [map]", ds.Algorithms)
	}
}

func TestFileHandlerGetJSONPlainFallback(t *testing.T) {
	root := t.TempDir()
	if _, err := dataset.WriteJSON(filepath.Join(root, "x.json"), map[string]int{"a": 1}, true); err != nil {
		t.Fatal(err)
	}
	ch := NewChannel(&FileHandler{Root: root})
	defer ch.Close()

	var v map[string]int
	if err := ch.FetchJSON(context.Background(), "x.json", &v); err != nil {
		t.Fatal(err)
	}
	if v["a"] != 1 {
		t.Errorf("FetchJSON = %v", v)
	}
}

func TestFileHandlerRejects(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "broken.json"), []byte("{"), 0o644)
	h := &FileHandler{Root: root}

	tests := []Request{
		{Type: RequestGetJSON, File: "../secret.json"},
		{Type: RequestGetJSON, File: "broken.json"},
		{Type: RequestGetJSON, File: "missing.json"},
		{Type: RequestGetThumb, File: "missing.jpg"},
		{Type: "bogus"},
	}
	for _, req := range tests {
		if _, err := h.Handle(context.Background(), req); err == nil {
			t.Errorf("Handle(%s %q) should fail", req.Type, req.File)
		}
	}
}
