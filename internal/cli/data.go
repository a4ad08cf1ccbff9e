package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phanxgames/glyphscape"
	"github.com/phanxgames/glyphscape/dataset"
	"github.com/phanxgames/glyphscape/internal/config"
	"github.com/phanxgames/glyphscape/worker"
)

// session is the data side of a view: the provider of the configured data
// directory and the thumbnail cache.
type session struct {
	provider *dataset.Provider
	thumbs   *worker.ThumbCache
	channel  *worker.Channel
}

// openSession reads the data directory the way the [data] section says:
// straight from disk, or through a worker channel that owns the directory.
func openSession(cfg *config.Config) (*session, error) {
	dir := cfg.Data.Dir
	coll, err := dataset.Discover(dir)
	if err != nil {
		return nil, err
	}

	s := &session{}
	var fetch worker.Fetcher
	switch cfg.Data.Source {
	case "", "local":
		s.provider = dataset.NewProvider(dataset.DirSource{Dir: dir}, coll)
		fetch = worker.FetcherFunc(func(_ context.Context, file string) ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, filepath.FromSlash(file)))
		})
	case "worker":
		for i := range coll {
			coll[i].Source = "worker"
		}
		s.channel = worker.NewChannel(&worker.FileHandler{Root: dir})
		s.provider = dataset.NewProvider(worker.Source{Channel: s.channel}, coll)
		fetch = worker.ChannelFetcher(s.channel)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
	if cfg.Data.ThumbnailURL != "" {
		fetch = worker.HTTPFetcher(nil, cfg.Data.ThumbnailURL)
	}
	s.thumbs = worker.NewThumbCache(fetch)
	return s, nil
}

// load returns the dataset run to show. An empty name picks the first
// dataset of the collection.
func (s *session) load(ctx context.Context, name, timestamp string) (*dataset.Dataset, error) {
	if name == "" {
		coll := s.provider.Collection()
		if len(coll) == 0 {
			return nil, fmt.Errorf("%w: the data directory holds no datasets", dataset.ErrNoData)
		}
		name = coll[0].Dataset
	}
	return s.provider.Load(ctx, name, timestamp)
}

func (s *session) close() {
	s.thumbs.Close()
	if s.channel != nil {
		s.channel.Close()
	}
}

// newApp builds the app for a loaded dataset. The dataset schema decides
// the colour and axis features; thumbnails are looked up in a folder named
// after the dataset.
func newApp(cfg *config.Config, s *session, ds *dataset.Dataset) (*glyphscape.App, error) {
	if len(ds.Algorithms) == 0 {
		return nil, errors.New("the dataset has no position files")
	}
	gc := cfg.GlyphConfig()
	ds.Apply(gc)
	gc.DataDir = ds.Name

	app := glyphscape.NewApp(glyphscape.AppOptions{
		Canvases:    cfg.Window.Canvases,
		Config:      gc,
		Thumbnails:  s.thumbs,
		ExportDir:   cfg.Export.Dir,
		ExportScale: cfg.Export.Scale,
		Debug:       cfg.Debug.Enabled,
	})
	app.SetData(ds.Glyphs, []string{ds.Timestamp}, ds.Algorithms)
	return app, nil
}

// exportScript waits for the fit animation to settle, exports every canvas
// into dir and gives the export a frame to be written.
func exportScript(dir string, settle int) (*glyphscape.ScriptRunner, error) {
	quoted, err := json.Marshal(dir)
	if err != nil {
		return nil, err
	}
	js := fmt.Sprintf(`{"steps": [
		{"action": "wait", "frames": %d},
		{"action": "command", "command": "export", "dir": %s},
		{"action": "wait", "frames": 2}
	]}`, settle, quoted)
	return glyphscape.LoadScript([]byte(js))
}
