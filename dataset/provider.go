package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/phanxgames/glyphscape"
	"golang.org/x/sync/errgroup"
)

// Dataset is one loaded run of a dataset.
type Dataset struct {
	Name      string
	Timestamp string
	Schema    Schema
	Meta      Meta
	Glyphs    []*glyphscape.Glyph
	// Algorithms lists the layouts the glyphs have positions for, sorted.
	Algorithms []string
}

// Apply sets the color feature, the active features and the feature
// labels of cfg from the dataset schema.
func (d *Dataset) Apply(cfg *glyphscape.GlyphConfig) {
	cfg.ColorFeature = d.Schema.Color
	cfg.ActiveFeatures = append([]string(nil), d.Schema.Glyph...)
	cfg.FeatureLabels = make(map[string]string, len(d.Schema.Label))
	for k, v := range d.Schema.Label {
		cfg.FeatureLabels[k] = v
	}
}

// Provider loads datasets of a collection from a Source and caches them by
// name and timestamp. It is safe for concurrent use.
type Provider struct {
	src Source

	mu         sync.Mutex
	collection Collection
	cache      map[string]map[string]*Dataset
}

// NewProvider returns a provider over src with an initial collection.
func NewProvider(src Source, coll Collection) *Provider {
	p := &Provider{src: src, cache: map[string]map[string]*Dataset{}}
	p.Merge(coll)
	return p
}

// Collection returns a copy of the known collection.
func (p *Provider) Collection() Collection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneCollection(p.collection)
}

// Merge adds coll to the known collection. Entries merge by dataset name;
// items whose time is already known are skipped.
func (p *Provider) Merge(coll Collection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, in := range coll {
		i := p.indexOf(in.Dataset)
		if i < 0 {
			p.collection = append(p.collection, cloneEntry(in))
			continue
		}
		existing := &p.collection[i]
		seen := make(map[string]bool, len(existing.Items))
		for _, it := range existing.Items {
			seen[it.Time] = true
		}
		for _, it := range in.Items {
			if !seen[it.Time] {
				existing.Items = append(existing.Items, it)
				seen[it.Time] = true
			}
		}
	}
}

func (p *Provider) indexOf(name string) int {
	for i, e := range p.collection {
		if e.Dataset == name {
			return i
		}
	}
	return -1
}

// Timestamps returns the run times of a dataset in collection order.
func (p *Provider) Timestamps(name string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.collection.Find(name)
	if !ok {
		return nil
	}
	out := make([]string, len(e.Items))
	for i, it := range e.Items {
		out[i] = it.Time
	}
	return out
}

// Algorithms returns the layout algorithms of a run, sorted.
func (p *Provider) Algorithms(name, timestamp string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.collection.Find(name)
	if !ok {
		return nil
	}
	it, ok := e.Item(timestamp)
	if !ok {
		return nil
	}
	return it.Algorithms.Names()
}

// Load returns the dataset run for name and timestamp, reading it from the
// source on first use. An empty timestamp selects the first run. The
// schema, meta, feature and position files are read in parallel.
func (p *Provider) Load(ctx context.Context, name, timestamp string) (*Dataset, error) {
	p.mu.Lock()
	e, ok := p.collection.Find(name)
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: dataset %q", ErrNoData, name)
	}
	it, ok := e.Item(timestamp)
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s at %q", ErrNoData, name, timestamp)
	}
	if ds, ok := p.cache[name][it.Time]; ok {
		p.mu.Unlock()
		return ds, nil
	}
	p.mu.Unlock()

	ds, err := p.read(ctx, name, it)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.cache[name][it.Time]; ok {
		return cached, nil
	}
	if p.cache[name] == nil {
		p.cache[name] = map[string]*Dataset{}
	}
	p.cache[name][it.Time] = ds
	logInfo("loaded %s/%s: %d glyphs, layouts %v", name, it.Time, len(ds.Glyphs), ds.Algorithms)
	return ds, nil
}

func (p *Provider) read(ctx context.Context, name string, it Item) (*Dataset, error) {
	algos := it.Algorithms.Names()
	var (
		schema    Schema
		meta      Meta
		features  []FeatureRecord
		positions = make([][]PositionRecord, len(algos))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.src.ReadJSON(ctx, it.Algorithms.Schema, &schema) })
	g.Go(func() error { return p.src.ReadJSON(ctx, it.Algorithms.Meta, &meta) })
	g.Go(func() error { return p.src.ReadJSON(ctx, it.Algorithms.Feature, &features) })
	for i, algo := range algos {
		g.Go(func() error {
			return p.src.ReadJSON(ctx, it.Algorithms.Position[algo], &positions[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", name, it.Time, err)
	}

	ds := &Dataset{
		Name:       name,
		Timestamp:  it.Time,
		Schema:     schema,
		Meta:       meta,
		Algorithms: algos,
	}
	ds.Glyphs = buildGlyphs(it.Time, features, algos, positions)
	return ds, nil
}

// buildGlyphs creates one glyph per feature record and attaches the
// positions by id. Position records for unknown ids are dropped.
func buildGlyphs(timestamp string, features []FeatureRecord, algos []string, positions [][]PositionRecord) []*glyphscape.Glyph {
	glyphs := make([]*glyphscape.Glyph, 0, len(features))
	byID := make(map[string]*glyphscape.Glyph, len(features))
	for _, f := range features {
		g := glyphscape.NewGlyph(string(f.ID))
		if f.Features != nil {
			g.Features = f.Features
		}
		if f.Values != nil {
			g.Values = f.Values
		}
		if f.DefaultContext != "" {
			g.DefaultContext = string(f.DefaultContext)
			g.CurrentContext = g.DefaultContext
		}
		glyphs = append(glyphs, g)
		byID[g.ID] = g
	}
	dropped := 0
	for i, algo := range algos {
		for _, rec := range positions[i] {
			g, ok := byID[string(rec.ID)]
			if !ok {
				dropped++
				continue
			}
			g.SetPosition(timestamp, algo, glyphscape.Vec2{X: rec.Position.X, Y: rec.Position.Y})
		}
	}
	if dropped > 0 {
		logWarn("%d positions without a matching glyph", dropped)
	}
	return glyphs
}

// Contexts returns the feature context ids of a dataset, sorted. They come
// from the schema, or from the glyphs when the schema lists none.
func Contexts(ds *Dataset) []string {
	set := map[string]bool{}
	for id := range ds.Schema.VariantContext {
		set[id] = true
	}
	if len(set) == 0 {
		for _, g := range ds.Glyphs {
			for id := range g.Features {
				set[id] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func cloneCollection(c Collection) Collection {
	out := make(Collection, len(c))
	for i, e := range c {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e Entry) Entry {
	e.Items = append([]Item(nil), e.Items...)
	return e
}
