package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/phanxgames/glyphscape/dataset"
	"github.com/phanxgames/glyphscape/internal/config"
	"github.com/phanxgames/glyphscape/internal/ui"
	"github.com/phanxgames/glyphscape/worker"
)

func init() {
	color.NoColor = true
	dataset.LogOutput = io.Discard
	worker.LogOutput = io.Discard
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = prev }()
	configFile = ""

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "wine.csv")
	body := "acidity,sugar,map-x,map-y\n7.4,1.9,0,0\n7.8,2.6,1,2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessAndDiscover(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	out := filepath.Join(dir, "data")

	got, err := run(t, "process", writeCSV(t, dir), "--out", out, "--timestamp", "09072025")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, got)
	}
	if !strings.Contains(got, "wine") || !strings.Contains(got, "09072025") || !strings.Contains(got, "map") {
		t.Errorf("process output missing the dataset row:\n%s", got)
	}

	got, err = run(t, "discover", out)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if !strings.Contains(got, "DATASET") || !strings.Contains(got, "local") {
		t.Errorf("discover output:\n%s", got)
	}
}

func TestDiscoverEmpty(t *testing.T) {
	got, err := run(t, "discover", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "no datasets found") {
		t.Errorf("output = %q", got)
	}
}

func TestProcessNeedsFile(t *testing.T) {
	if _, err := run(t, "process"); err == nil {
		t.Error("process without a file should fail")
	}
}

func TestConfigCommands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := run(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(got) != config.Path() {
		t.Errorf("config path = %q, want %q", got, config.Path())
	}

	if _, err := run(t, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(config.Path()); err != nil {
		t.Errorf("config init did not write the file: %v", err)
	}

	got, err = run(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "[window]") || !strings.Contains(got, `title = "glyphview"`) {
		t.Errorf("config show:\n%s", got)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	os.WriteFile(path, []byte("[window]\ntitle = \"custom\"\n"), 0o644)
	got, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `title = "custom"`) {
		t.Errorf("config show with --config:\n%s", got)
	}
}

func TestOpenSession(t *testing.T) {
	dir := t.TempDir()
	if _, err := dataset.ProcessCSV(writeCSV(t, dir), dir, dataset.ProcessOptions{Timestamp: "01012024"}); err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{"local", "worker"} {
		t.Run(source, func(t *testing.T) {
			cfg := config.Default()
			cfg.Data.Dir = dir
			cfg.Data.Source = source
			s, err := openSession(cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer s.close()

			ds, err := s.load(context.Background(), "", "")
			if err != nil {
				t.Fatal(err)
			}
			if ds.Name != "wine" || len(ds.Glyphs) != 2 {
				t.Errorf("loaded %s with %d glyphs", ds.Name, len(ds.Glyphs))
			}
			if got := s.provider.Collection()[0].Source; got != source {
				t.Errorf("Source = %q, want %q", got, source)
			}
		})
	}
}

func TestOpenSessionErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Data.Source = "ftp"
	if _, err := openSession(cfg); err == nil {
		t.Error("unknown source should fail")
	}

	cfg.Data.Source = "local"
	s, err := openSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.close()
	if _, err := s.load(context.Background(), "", ""); !errors.Is(err, dataset.ErrNoData) {
		t.Errorf("empty dir err = %v, want ErrNoData", err)
	}
}

func TestExportScript(t *testing.T) {
	r, err := exportScript(`C:\out "x"`, 10)
	if err != nil {
		t.Fatalf("exportScript: %v", err)
	}
	if r.Done() {
		t.Error("new script should not be done")
	}
}

func TestViewFlagsApply(t *testing.T) {
	cfg := config.Default()
	f := viewFlags{dataset: "cars", canvases: 3, glyph: "flower"}
	f.apply(cfg)
	if cfg.Data.Dataset != "cars" || cfg.Window.Canvases != 3 || cfg.Glyph.Type != "flower" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Data.Timestamp != "" {
		t.Errorf("unset timestamp changed to %q", cfg.Data.Timestamp)
	}
}
