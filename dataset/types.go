package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Collection lists every dataset the application knows about.
type Collection []Entry

// Entry is one dataset and the timestamps it was processed at.
type Entry struct {
	Dataset string `json:"dataset"`
	// Source is "local" for files on disk and "wasm" or "worker" for files
	// owned by a worker channel.
	Source string `json:"source"`
	Items  []Item `json:"items"`
}

// Item names the files of one processing run.
type Item struct {
	Algorithms Algorithms `json:"algorithms"`
	// Time is the run date as ddmmyyyy.
	Time string `json:"time"`
}

// Algorithms holds the file names of a run. Position maps a layout
// algorithm (pca, umap, tsne, ...) to its position file.
type Algorithms struct {
	Feature  string            `json:"feature"`
	Meta     string            `json:"meta"`
	Schema   string            `json:"schema"`
	Position map[string]string `json:"position"`
}

// Names returns the layout algorithms of the run, sorted.
func (a Algorithms) Names() []string {
	out := make([]string, 0, len(a.Position))
	for k := range a.Position {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Find returns the entry for a dataset name.
func (c Collection) Find(name string) (Entry, bool) {
	for _, e := range c {
		if e.Dataset == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Item returns the run for a timestamp. An empty timestamp selects the
// first run.
func (e Entry) Item(timestamp string) (Item, bool) {
	if timestamp == "" {
		if len(e.Items) == 0 {
			return Item{}, false
		}
		return e.Items[0], true
	}
	for _, it := range e.Items {
		if it.Time == timestamp {
			return it, true
		}
	}
	return Item{}, false
}

// Schema describes how a dataset is shown by default.
type Schema struct {
	// Color is the feature key that drives the glyph color.
	Color string `json:"color"`
	// Glyph lists the feature keys drawn as glyph axes.
	Glyph   []string          `json:"glyph"`
	Label   map[string]string `json:"label"`
	Tooltip []string          `json:"tooltip"`
	// VariantContext lists the feature contexts by id.
	VariantContext map[string]VariantContext `json:"variantcontext"`
}

// VariantContext is one named set of feature vectors.
type VariantContext struct {
	Description string `json:"description"`
	ID          string `json:"id"`
}

// Meta holds per-feature statistics.
type Meta struct {
	Features map[string]FeatureStats `json:"features"`
}

// FeatureStats summarizes one feature column. Histogram maps bin index
// "0".."49" to the density of the bin.
type FeatureStats struct {
	Histogram map[string]float64 `json:"histogram"`
	Max       float64            `json:"max"`
	Min       float64            `json:"min"`
	Median    float64            `json:"median"`
	Variance  float64            `json:"variance"`
	Deviation float64            `json:"deviation"`
}

// FeatureRecord is one glyph in a feature file.
type FeatureRecord struct {
	DefaultContext Key `json:"defaultcontext"`
	ID             Key `json:"id"`
	// Features maps context id → feature key → normalized value.
	Features map[string]map[string]float64 `json:"features"`
	Values   map[string]string             `json:"values"`
}

// PositionRecord is one glyph in a position file.
type PositionRecord struct {
	ID       Key   `json:"id"`
	Position Point `json:"position"`
}

// Point is a 2D position in data space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Key is an identifier that may be written as a JSON string or number.
// It always marshals as a string.
type Key string

// UnmarshalJSON implements json.Unmarshaler.
func (k *Key) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	if string(b) == "null" {
		*k = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("dataset: key %s: %w", b, err)
	}
	*k = Key(n.String())
	return nil
}
