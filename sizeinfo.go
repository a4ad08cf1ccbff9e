package glyphscape

// Reference canvas dimension the base sizes are tuned for.
const sizeReferenceDim = 900.0

// levelScale is the radius growth from low to medium zoom.
const levelScale = 1.25

// SizeInfo holds per-zoom-level glyph geometry: radius, contour thickness
// and hit tolerance. The values for the current level are cached.
type SizeInfo struct {
	baseRadius    float64
	baseContour   float64
	baseTolerance float64

	radii      [3]float64
	contours   [3]float64
	tolerances [3]float64

	level     ZoomLevel
	radius    float64
	contour   float64
	tolerance float64
}

// NewSizeInfo returns a SizeInfo with the default base values (radius 2,
// contour 0.3, hit tolerance 8) at the low level.
func NewSizeInfo() *SizeInfo {
	s := &SizeInfo{baseRadius: 2, baseContour: 0.3, baseTolerance: 8}
	for i := range s.radii {
		s.radii[i] = s.baseRadius
		s.contours[i] = s.baseContour
		s.tolerances[i] = s.baseTolerance
	}
	s.refresh()
	return s
}

// Update recomputes every level from the canvas pixel dimensions.
func (s *SizeInfo) Update(width, height float64) {
	base := min(width, height) / sizeReferenceDim

	s.radii[ZoomLow] = base * s.baseRadius
	s.radii[ZoomMedium] = base * s.baseRadius * levelScale
	s.radii[ZoomHigh] = base * s.baseRadius * levelScale * 2

	s.contours[ZoomLow] = s.baseContour
	s.contours[ZoomMedium] = s.baseContour
	s.contours[ZoomHigh] = s.baseContour * levelScale

	s.tolerances[ZoomLow] = s.baseTolerance
	s.tolerances[ZoomMedium] = s.baseTolerance * 4
	s.tolerances[ZoomHigh] = s.baseTolerance * 16

	s.refresh()
}

func (s *SizeInfo) refresh() {
	s.radius = s.radii[s.level]
	s.contour = s.contours[s.level]
	s.tolerance = s.tolerances[s.level]
}

// Level returns the current zoom level.
func (s *SizeInfo) Level() ZoomLevel { return s.level }

// SetLevel switches the current level and refreshes the cached values.
func (s *SizeInfo) SetLevel(level ZoomLevel) {
	s.level = level
	s.refresh()
}

// RadiusAt returns the glyph radius for the given level.
func (s *SizeInfo) RadiusAt(level ZoomLevel) float64 { return s.radii[level] }

// ContourAt returns the contour thickness for the given level.
func (s *SizeInfo) ContourAt(level ZoomLevel) float64 { return s.contours[level] }

// HitToleranceAt returns the hit tolerance in pixels for the given level.
func (s *SizeInfo) HitToleranceAt(level ZoomLevel) float64 { return s.tolerances[level] }

// Radius returns the radius at the current level.
func (s *SizeInfo) Radius() float64 { return s.radius }

// Contour returns the contour thickness at the current level.
func (s *SizeInfo) Contour() float64 { return s.contour }

// HitTolerance returns the hit tolerance at the current level.
func (s *SizeInfo) HitTolerance() float64 { return s.tolerance }

// SetRadius overrides the current radius until the next SetLevel or Update.
func (s *SizeInfo) SetRadius(r float64) { s.radius = r }

// SetHitTolerance overrides the current tolerance until the next SetLevel or Update.
func (s *SizeInfo) SetHitTolerance(t float64) { s.tolerance = t }

// Clone returns an independent copy including overrides.
func (s *SizeInfo) Clone() *SizeInfo {
	c := *s
	return &c
}
