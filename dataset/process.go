package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// histogramBins is the bin count of the meta histograms.
	histogramBins = 50
	// zeroThreshold is the magnitude below which normalized values are 0.
	zeroThreshold = 1e-3
	// schemaGlyphFeatures is the number of features a new schema draws.
	schemaGlyphFeatures = 5
)

var (
	lonNames = []string{"longitude", "lon", "breitengrad"}
	latNames = []string{"latitude", "lat", "längengrad"}
)

// ProcessOptions configures ProcessCSV.
type ProcessOptions struct {
	// Timestamp names the run. Empty uses today's date as ddmmyyyy.
	Timestamp string
	// Compress writes the JSON files zstd compressed.
	Compress bool
}

// table is a parsed CSV file with the id in column 0.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) column(j int) []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// ProcessCSV turns a CSV file into the schema, feature, meta and position
// files of one dataset run in outDir and returns the collection found in
// outDir afterwards. The dataset is named after the CSV file.
//
// Position files are written for every "<prefix>-x"/"<prefix>-y" column
// pair and, when longitude and latitude columns exist, as "epsg".
func ProcessCSV(path, outDir string, opts ProcessOptions) (Collection, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	ts := opts.Timestamp
	if ts == "" {
		ts = time.Now().Format("02012006")
	}
	base := filepath.Join(outDir, Stem(path)+"."+ts)

	write := func(kind string, v any) error {
		name, err := WriteJSON(base+"."+kind+".json", v, opts.Compress)
		if err != nil {
			return err
		}
		logInfo("written %s", filepath.Base(name))
		return nil
	}

	if err := write("schema", buildSchema(t)); err != nil {
		return nil, err
	}
	if err := write("feature", buildFeatures(t)); err != nil {
		return nil, err
	}
	if err := write("meta", buildMeta(t)); err != nil {
		return nil, err
	}
	for _, p := range xyPositions(t) {
		if err := write("position."+p.name, p.records); err != nil {
			return nil, err
		}
	}
	if recs := epsgPositions(t); len(recs) > 0 {
		if err := write("position.epsg", recs); err != nil {
			return nil, err
		}
	}
	return Discover(outDir)
}

// readCSV parses the file and inserts an "ID" column numbered from 1 when
// the first column is not already named id.
func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s: empty file", filepath.Base(path))
	}
	t := &table{header: records[0], rows: records[1:]}
	if !strings.EqualFold(strings.TrimSpace(t.header[0]), "id") {
		t.header = append([]string{"ID"}, t.header...)
		for i, r := range t.rows {
			t.rows[i] = append([]string{strconv.Itoa(i + 1)}, r...)
		}
	}
	return t, nil
}

// featureKey is the key of feature column j (j ≥ 1).
func featureKey(j int) string { return strconv.Itoa(j) }

func buildSchema(t *table) Schema {
	s := Schema{
		Label: map[string]string{},
		VariantContext: map[string]VariantContext{
			"1": {Description: "standard context", ID: "1"},
		},
	}
	for j := 1; j < len(t.header); j++ {
		key := featureKey(j)
		s.Label[key] = t.header[j]
		s.Tooltip = append(s.Tooltip, key)
		if len(s.Glyph) < schemaGlyphFeatures {
			s.Glyph = append(s.Glyph, key)
		}
	}
	if len(s.Tooltip) > 0 {
		s.Color = s.Tooltip[0]
	}
	return s
}

func buildFeatures(t *table) []FeatureRecord {
	cols := make([][]float64, len(t.header))
	for j := 1; j < len(t.header); j++ {
		cols[j] = normalize(encodeColumn(t.column(j)))
	}
	out := make([]FeatureRecord, len(t.rows))
	for i, r := range t.rows {
		feats := make(map[string]float64, len(t.header)-1)
		values := make(map[string]string, len(t.header)-1)
		for j := 1; j < len(t.header); j++ {
			feats[featureKey(j)] = cols[j][i]
			v := r[j]
			if v == "" {
				v = "0"
			}
			values[featureKey(j)] = v
		}
		out[i] = FeatureRecord{
			DefaultContext: "1",
			ID:             Key(r[0]),
			Features:       map[string]map[string]float64{"1": feats},
			Values:         values,
		}
	}
	return out
}

// parseNumeric parses every non-empty cell of a column. ok is false when
// some cell is not a number.
func parseNumeric(col []string) (vals []float64, ok bool) {
	vals = make([]float64, len(col))
	for i, s := range col {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// encodeColumn returns numeric columns as numbers (empty cells 0) and
// label-encodes other columns by the sorted unique values, empty cells
// counting as "0".
func encodeColumn(col []string) []float64 {
	if vals, ok := parseNumeric(col); ok {
		return vals
	}
	labels := make([]string, len(col))
	set := map[string]bool{}
	for i, s := range col {
		if s == "" {
			s = "0"
		}
		labels[i] = s
		set[s] = true
	}
	uniq := make([]string, 0, len(set))
	for s := range set {
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)
	index := make(map[string]int, len(uniq))
	for i, s := range uniq {
		index[s] = i
	}
	out := make([]float64, len(col))
	for i, s := range labels {
		out[i] = float64(index[s])
	}
	return out
}

// normalize min-max scales vals into [0,1]. A constant column becomes 0
// and values below the zero threshold are cleared.
func normalize(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range vals {
		n := (v - lo) / (hi - lo)
		if math.Abs(n) < zeroThreshold {
			n = 0
		}
		out[i] = n
	}
	return out
}

// coerceColumn parses each cell on its own; cells that are not numbers
// count as 0.
func coerceColumn(col []string) []float64 {
	out := make([]float64, len(col))
	for i, s := range col {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) {
			out[i] = v
		}
	}
	return out
}

func buildMeta(t *table) Meta {
	m := Meta{Features: map[string]FeatureStats{}}
	for j := 1; j < len(t.header); j++ {
		m.Features[featureKey(j)] = columnStats(coerceColumn(t.column(j)))
	}
	return m
}

// columnStats computes the population statistics and a density histogram
// of a column.
func columnStats(vals []float64) FeatureStats {
	s := FeatureStats{Histogram: map[string]float64{}}
	n := len(vals)
	if n == 0 {
		return s
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min, s.Max = sorted[0], sorted[n-1]
	if n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)
	for _, v := range vals {
		s.Variance += (v - mean) * (v - mean)
	}
	s.Variance /= float64(n)
	s.Deviation = math.Sqrt(s.Variance)

	for i, d := range histogram(vals, s.Min, s.Max, histogramBins) {
		s.Histogram[strconv.Itoa(i)] = d
	}
	return s
}

// histogram returns the density of bins equal-width bins over [lo,hi]. The
// last bin includes hi. A constant column uses the range [lo-0.5, hi+0.5].
func histogram(vals []float64, lo, hi float64, bins int) []float64 {
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range vals {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	for i := range counts {
		counts[i] /= float64(len(vals)) * width
	}
	return counts
}

type positionFile struct {
	name    string
	records []PositionRecord
}

// xyPositions collects "<prefix>-x"/"<prefix>-y" column pairs, matched
// case-insensitively, in header order. Rows missing either coordinate are
// skipped and pairs without rows are not written.
func xyPositions(t *table) []positionFile {
	lower := map[string]int{}
	for j, h := range t.header {
		lower[strings.ToLower(h)] = j
	}
	var out []positionFile
	for j, h := range t.header {
		name := strings.ToLower(h)
		if !strings.HasSuffix(name, "-x") {
			continue
		}
		prefix := strings.TrimSuffix(name, "-x")
		yj, ok := lower[prefix+"-y"]
		if !ok {
			continue
		}
		recs := positions(t, j, yj)
		if len(recs) == 0 {
			logWarn("no valid coordinates for %q", prefix)
			continue
		}
		out = append(out, positionFile{name: prefix, records: recs})
	}
	return out
}

// epsgPositions reads longitude and latitude columns as x and y.
func epsgPositions(t *table) []PositionRecord {
	lon, lat := findColumn(t, lonNames), findColumn(t, latNames)
	if lon < 0 || lat < 0 {
		return nil
	}
	return positions(t, lon, lat)
}

func findColumn(t *table, names []string) int {
	for _, n := range names {
		for j, h := range t.header {
			if strings.ToLower(h) == n {
				return j
			}
		}
	}
	return -1
}

func positions(t *table, xj, yj int) []PositionRecord {
	var out []PositionRecord
	for _, r := range t.rows {
		x, errX := strconv.ParseFloat(strings.TrimSpace(r[xj]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(r[yj]), 64)
		if errX != nil || errY != nil || math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		out = append(out, PositionRecord{ID: Key(r[0]), Position: Point{X: x, Y: y}})
	}
	return out
}
