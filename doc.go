// Package glyphscape is the render and interaction core of a glyph
// visualization built on [Ebitengine].
//
// Each data item is a [Glyph]: a feature vector drawn as a small
// multivariate figure (star, flower, whisker or thumbnail) at a projected
// 2D position. A [Canvas] shows one layout of a glyph set and lets the
// user pan, zoom, hover, select and magnify it. Several canvases can show
// the same data side by side; they share the [GlyphConfig], the
// [FilterRegistry] and the [CommandBus].
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and
// hosts the canvases of an [App]:
//
//	app := glyphscape.NewApp(glyphscape.AppOptions{Canvases: 2})
//	app.SetData(glyphs, []string{"01012024"}, []string{"umap"})
//	glyphscape.Run(app, glyphscape.RunConfig{
//		Title: "glyphview", Width: 1600, Height: 900,
//	})
//
// For full control, create canvases with [NewCanvas] and call
// [Canvas.Update] and [Canvas.Draw] from your own [ebiten.Game].
//
// # Levels of detail
//
// The camera zoom selects one of three [ZoomLevel]s. At the low level
// glyphs are dots, optionally aggregated into clusters; at medium and high
// zoom they are drawn in full. [SizeInfo] holds the radius, contour width
// and hit tolerance of each level for the current canvas size.
//
// # Frame loop
//
// A canvas only works while something is pending in its [Scheduler]:
// the collision layout, the relaxation back to the original layout, the
// hover pulse, the fit-to-view transition, the lens rebuild and plain
// redraws. Tasks panicking inside the loop are logged and dropped.
//
// # Interaction
//
// Mouse and touch input goes through a small gesture recognizer: clicks,
// drags, wheel zoom, pinch zoom and keyboard toggles (c collision,
// f fit, a aggregation, d settings, s selection mode, x redraw, l lens).
// Tests drive it without a window through the Inject methods and
// [LoadScript].
//
// [Ebitengine]: https://ebitengine.org
package glyphscape
