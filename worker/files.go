package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/phanxgames/glyphscape/dataset"
)

var imageName = regexp.MustCompile(`(?i)\.(png|jpe?g|webp)$`)

// FileHandler serves requests from a directory: uploads are written to
// it, datasets are processed into it and files are read from it.
type FileHandler struct {
	Root string
	// Compress writes processed datasets zstd compressed.
	Compress bool
}

// Handle implements Handler.
func (h *FileHandler) Handle(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	switch req.Type {
	case RequestProcess:
		return h.process(req)
	case RequestUnzip:
		return h.unzip(req)
	case RequestGetJSON:
		return h.getJSON(req)
	case RequestGetThumb:
		return h.getThumb(req)
	}
	return Reply{}, fmt.Errorf("unknown request %q", req.Type)
}

// resolve maps a request file to a path under Root.
func (h *FileHandler) resolve(file string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(file, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid file %q", file)
	}
	return filepath.Join(h.Root, rel), nil
}

func (h *FileHandler) process(req Request) (Reply, error) {
	if err := os.MkdirAll(h.Root, 0o755); err != nil {
		return Reply{}, err
	}
	p := filepath.Join(h.Root, path.Base(filepath.ToSlash(req.File)))
	if err := os.WriteFile(p, req.Data, 0o644); err != nil {
		return Reply{}, err
	}
	coll, err := dataset.ProcessCSV(p, h.Root, dataset.ProcessOptions{Compress: h.Compress})
	if err != nil {
		return Reply{}, err
	}
	for i := range coll {
		coll[i].Source = "worker"
	}
	return Reply{Type: ReplyProcessed, File: req.File, Dataset: coll}, nil
}

// unzip unpacks an archive flat into a folder named after it. Directory
// structure inside the archive is dropped.
func (h *FileHandler) unzip(req Request) (Reply, error) {
	name := strings.TrimSuffix(path.Base(filepath.ToSlash(req.File)), ".zip")
	folder := filepath.Join(h.Root, name)
	if err := os.RemoveAll(folder); err != nil {
		return Reply{}, fmt.Errorf("unzip failed: %w", err)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Reply{}, fmt.Errorf("unzip failed: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(req.Data), int64(len(req.Data)))
	if err != nil {
		return Reply{}, fmt.Errorf("unzip failed: %w", err)
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		if err := extract(f, filepath.Join(folder, path.Base(f.Name))); err != nil {
			return Reply{}, fmt.Errorf("unzip failed: %w", err)
		}
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return Reply{}, fmt.Errorf("unpack failed: folder %s not found", name)
	}
	var images []string
	for _, e := range entries {
		if !e.IsDir() && imageName.MatchString(e.Name()) {
			images = append(images, e.Name())
		}
	}
	sort.Strings(images)
	logInfo("unpacked %s: %d images", name, len(images))
	return Reply{Type: ReplyUnzipped, File: req.File, Folder: name, Images: images}, nil
}

func extract(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (h *FileHandler) getJSON(req Request) (Reply, error) {
	p, err := h.resolve(req.File)
	if err != nil {
		return Reply{}, err
	}
	data, err := dataset.ReadFile(p)
	if errors.Is(err, dataset.ErrNoData) && !strings.HasSuffix(p, ".zst") {
		data, err = dataset.ReadFile(p + ".zst")
	}
	if err != nil {
		return Reply{}, err
	}
	if !json.Valid(data) {
		return Reply{}, fmt.Errorf("%s: invalid JSON", req.File)
	}
	return Reply{Type: ReplyJSON, File: req.File, Data: data}, nil
}

func (h *FileHandler) getThumb(req Request) (Reply, error) {
	p, err := h.resolve(req.File)
	if err != nil {
		return Reply{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Reply{}, fmt.Errorf("thumbnail error: %w", err)
	}
	return Reply{Type: ReplyThumb, File: req.File, Data: data}, nil
}
