package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrNoData is returned when a dataset, timestamp or file does not exist.
var ErrNoData = errors.New("dataset: no data")

// zstdExt marks compressed files.
const zstdExt = ".zst"

// Source reads the JSON files of a collection.
type Source interface {
	ReadJSON(ctx context.Context, file string, v any) error
}

// DirSource reads files from a directory. A file "x.json" is read from
// "x.json.zst" when only the compressed variant exists.
type DirSource struct {
	Dir string
}

// ReadJSON implements Source.
func (s DirSource) ReadJSON(ctx context.Context, file string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, filepath.FromSlash(file))
	data, err := ReadFile(path)
	if errors.Is(err, ErrNoData) && !strings.HasSuffix(path, zstdExt) {
		data, err = ReadFile(path + zstdExt)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dataset: decode %s: %w", file, err)
	}
	return nil
}

// ReadFile reads a file, decompressing it when its name ends in ".zst".
// A missing file yields ErrNoData.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoData, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, zstdExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd reader %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return data, nil
}

// WriteJSON writes v as indented JSON to path. With compress set the data
// is zstd compressed and ".zst" is appended to the name. It returns the
// file name written.
func WriteJSON(path string, v any, compress bool) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("dataset: encode %s: %w", filepath.Base(path), err)
	}
	if compress {
		path += zstdExt
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("dataset: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if compress {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return "", fmt.Errorf("dataset: zstd writer %s: %w", path, err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return "", fmt.Errorf("dataset: write %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("dataset: write %s: %w", path, err)
		}
	} else if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("dataset: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("dataset: flush %s: %w", path, err)
	}
	return path, f.Close()
}
