package glyphscape

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// FilterMode selects how a filter combines with the others.
type FilterMode uint8

const (
	FilterAnd FilterMode = iota
	FilterOr
)

func (m FilterMode) String() string {
	if m == FilterOr {
		return "or"
	}
	return "and"
}

// Filter decides which glyphs stay active. An empty filter takes no part
// in the decision.
type Filter interface {
	InFilter(g *Glyph) bool
	Empty() bool
	Clear()
	Mode() FilterMode
	SetMode(m FilterMode)
	Info() string
}

type filterMode struct{ mode FilterMode }

func (f *filterMode) Mode() FilterMode     { return f.mode }
func (f *filterMode) SetMode(m FilterMode) { f.mode = m }

// IDFilter accepts glyphs by id.
type IDFilter struct {
	filterMode
	ids []string
}

// NewIDFilter returns a filter accepting ids.
func NewIDFilter(ids ...string) *IDFilter {
	f := &IDFilter{}
	f.AddAll(ids)
	return f
}

func (f *IDFilter) InFilter(g *Glyph) bool { return f.Contains(g.ID) }
func (f *IDFilter) Empty() bool            { return len(f.ids) == 0 }
func (f *IDFilter) Clear()                 { f.ids = f.ids[:0] }

func (f *IDFilter) Info() string {
	return fmt.Sprintf("id filter: %d ids, mode %s", len(f.ids), f.mode)
}

// Contains reports whether id is accepted.
func (f *IDFilter) Contains(id string) bool {
	return slices.Contains(f.ids, id)
}

// Add accepts id.
func (f *IDFilter) Add(id string) {
	if !f.Contains(id) {
		f.ids = append(f.ids, id)
	}
}

// Remove stops accepting id.
func (f *IDFilter) Remove(id string) {
	if i := slices.Index(f.ids, id); i >= 0 {
		f.ids = slices.Delete(f.ids, i, i+1)
	}
}

// Toggle flips whether id is accepted.
func (f *IDFilter) Toggle(id string) {
	if i := slices.Index(f.ids, id); i >= 0 {
		f.ids = slices.Delete(f.ids, i, i+1)
	} else {
		f.ids = append(f.ids, id)
	}
}

// AddAll accepts every id in ids and sorts the accepted set.
func (f *IDFilter) AddAll(ids []string) {
	for _, id := range ids {
		f.Add(id)
	}
	sort.Strings(f.ids)
}

// SetIDs replaces the accepted set.
func (f *IDFilter) SetIDs(ids []string) {
	f.ids = f.ids[:0]
	f.AddAll(ids)
}

// IDs returns a copy of the accepted ids.
func (f *IDFilter) IDs() []string {
	return slices.Clone(f.ids)
}

// FeatureFilter accepts glyphs whose value for Name in their current
// context lies in [min, max]. It is empty until both bounds are set.
type FeatureFilter struct {
	filterMode
	Name string

	min, max       float64
	hasMin, hasMax bool
}

// NewFeatureFilter returns an empty filter on feature name.
func NewFeatureFilter(name string) *FeatureFilter {
	return &FeatureFilter{Name: name}
}

// SetMin sets the lower bound. It panics outside [0, 1].
func (f *FeatureFilter) SetMin(v float64) {
	checkUnit(v)
	f.min, f.hasMin = v, true
}

// SetMax sets the upper bound. It panics outside [0, 1].
func (f *FeatureFilter) SetMax(v float64) {
	checkUnit(v)
	f.max, f.hasMax = v, true
}

// SetRange sets both bounds.
func (f *FeatureFilter) SetRange(lo, hi float64) {
	f.SetMin(lo)
	f.SetMax(hi)
}

// Min returns the lower bound and whether it is set.
func (f *FeatureFilter) Min() (float64, bool) { return f.min, f.hasMin }

// Max returns the upper bound and whether it is set.
func (f *FeatureFilter) Max() (float64, bool) { return f.max, f.hasMax }

func checkUnit(v float64) {
	if !(v >= 0 && v <= 1) {
		panic(fmt.Sprintf("glyphscape: feature filter bound %v outside [0,1]", v))
	}
}

func (f *FeatureFilter) Empty() bool { return !f.hasMin || !f.hasMax }

func (f *FeatureFilter) Clear() {
	f.hasMin, f.hasMax = false, false
	f.min, f.max = 0, 0
}

func (f *FeatureFilter) InFilter(g *Glyph) bool {
	if f.Empty() {
		return false
	}
	v, ok := g.Features[g.CurrentContext][f.Name]
	if !ok {
		return false
	}
	return v >= f.min && v <= f.max
}

func (f *FeatureFilter) Info() string {
	return fmt.Sprintf("feature filter %s: %v..%v, mode %s", f.Name, f.min, f.max, f.mode)
}

// TextFilter accepts glyphs with any display value equal, ignoring case,
// to one of its strings.
type TextFilter struct {
	filterMode
	accepted []string
}

// NewTextFilter returns a filter accepting strs.
func NewTextFilter(strs ...string) *TextFilter {
	f := &TextFilter{}
	f.Extend(strs)
	return f
}

// SetStrings replaces the accepted strings.
func (f *TextFilter) SetStrings(strs []string) {
	f.accepted = f.accepted[:0]
	f.Extend(strs)
}

// Extend adds strs to the accepted set.
func (f *TextFilter) Extend(strs []string) {
	for _, s := range strs {
		s = strings.ToLower(s)
		if !slices.Contains(f.accepted, s) {
			f.accepted = append(f.accepted, s)
		}
	}
	sort.Strings(f.accepted)
}

// Strings returns a copy of the accepted strings, lower-cased and sorted.
func (f *TextFilter) Strings() []string { return slices.Clone(f.accepted) }

func (f *TextFilter) Empty() bool { return len(f.accepted) == 0 }
func (f *TextFilter) Clear()      { f.accepted = f.accepted[:0] }
func (f *TextFilter) Info() string {
	return fmt.Sprintf("text filter: %d strings, mode %s", len(f.accepted), f.mode)
}

func (f *TextFilter) InFilter(g *Glyph) bool {
	for _, v := range g.Values {
		if slices.Contains(f.accepted, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// FilterRegistry is the ordered set of filters shared by every canvas.
type FilterRegistry struct {
	mu      sync.RWMutex
	filters []Filter
	active  int
}

// NewFilterRegistry returns an empty registry.
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{}
}

// Add appends f unless it is already registered.
func (r *FilterRegistry) Add(f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.filters, f) {
		r.filters = append(r.filters, f)
	}
}

// Remove unregisters f.
func (r *FilterRegistry) Remove(f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.filters, f); i >= 0 {
		r.filters = slices.Delete(r.filters, i, i+1)
	}
}

// Contains reports whether f is registered.
func (r *FilterRegistry) Contains(f Filter) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.filters, f)
}

// Filters returns a copy of the registered filters in order.
func (r *FilterRegistry) Filters() []Filter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.filters)
}

// Clear unregisters every filter.
func (r *FilterRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = nil
}

// ClearIDFilters empties every registered IDFilter.
func (r *FilterRegistry) ClearIDFilters() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.filters {
		if idf, ok := f.(*IDFilter); ok {
			idf.Clear()
		}
	}
}

// Active returns the count of non-passive glyphs from the last Refresh.
func (r *FilterRegistry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Refresh recomputes Passive for every glyph and returns how many remain
// active. A glyph is active when every non-empty AND filter accepts it and
// either some non-empty OR filter accepts it or all OR filters are empty.
// When every filter is empty no glyph is passive.
func (r *FilterRegistry) Refresh(glyphs []*Glyph) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	allEmpty := true
	orEmpty := true
	for _, f := range r.filters {
		if f.Empty() {
			continue
		}
		allEmpty = false
		if f.Mode() == FilterOr {
			orEmpty = false
		}
	}

	count := 0
	for _, g := range glyphs {
		if allEmpty {
			g.Passive = false
			count++
			continue
		}
		and, or := true, orEmpty
		for _, f := range r.filters {
			if f.Empty() {
				continue
			}
			if f.Mode() == FilterOr {
				or = or || f.InFilter(g)
			} else {
				and = and && f.InFilter(g)
			}
		}
		g.Passive = !(and && or)
		if !g.Passive {
			count++
		}
	}
	r.active = count
	return count
}
