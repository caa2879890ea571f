// Package signature captures freehand pointer strokes into a raster
// surface and publishes the finished drawing as an encoded PNG payload.
package signature

import (
	"bytes"
	"image"

	"github.com/gogpu/gg"

	"github.com/inkarsa/kwitansi/internal"
)

const (
	inkColor        = "#1f2937"
	backgroundColor = "#ffffff"
	strokeWidth     = 2.8
)

// Point is a position in logical (density-independent) units relative to
// the surface's top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type state int

const (
	stateIdle state = iota
	stateStroking
)

// Surface renders pointer strokes into a fixed-background raster. The
// backing pixel dimensions are the logical size multiplied by the pixel
// ratio; all pointer math stays in logical units and is scaled once via
// the drawing transform.
//
// Exactly one pointer is tracked at a time: a pointer-down arriving with a
// different id while a stroke is active is ignored, as are moves and
// releases from untracked pointers.
type Surface struct {
	dc     *gg.Context
	width  float64
	height float64
	ratio  float64

	state     state
	pointerID int
	last      Point

	published []byte
}

// NewSurface creates a blank surface of the given logical size and pixel
// ratio. Ratios below 1 are clamped to 1.
func NewSurface(width, height, ratio float64) *Surface {
	s := &Surface{}
	s.Clear(width, height, ratio)
	return s
}

// Clear reinitializes the surface: the raster dimensions are recomputed
// from the given layout size (it can change between mounts), the drawing
// transform is reset, the background refilled, and the published payload
// dropped.
func (s *Surface) Clear(width, height, ratio float64) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if ratio < 1 {
		ratio = 1
	}
	s.width = width
	s.height = height
	s.ratio = ratio

	pxW := int(width*ratio + 0.5)
	pxH := int(height*ratio + 0.5)
	if s.dc == nil {
		s.dc = gg.NewContext(pxW, pxH)
	} else if err := s.dc.Resize(pxW, pxH); err != nil {
		internal.WarningLog("signature: resize rejected, recreating context: %s", err.Error())
		s.dc = gg.NewContext(pxW, pxH)
	}

	s.dc.Identity()
	s.dc.ClearWithColor(gg.Hex(backgroundColor))
	s.dc.Scale(ratio, ratio)
	s.dc.SetHexColor(inkColor)
	s.dc.SetLineWidth(strokeWidth)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)

	s.state = stateIdle
	s.pointerID = 0
	s.published = nil
}

// PointerDown begins a stroke at p. While a stroke is active, downs from
// other pointers are ignored.
func (s *Surface) PointerDown(id int, p Point) {
	if s.state == stateStroking {
		return
	}
	s.state = stateStroking
	s.pointerID = id
	s.last = p
}

// PointerMove extends the active stroke to p, rasterizing the new segment
// immediately. Moves while idle or from untracked pointers do nothing.
func (s *Surface) PointerMove(id int, p Point) {
	if s.state != stateStroking || id != s.pointerID {
		return
	}
	s.dc.MoveTo(s.last.X, s.last.Y)
	s.dc.LineTo(p.X, p.Y)
	if err := s.dc.Stroke(); err != nil {
		internal.WarningLog("signature: stroke segment failed: %s", err.Error())
	}
	s.last = p
}

// PointerUp completes the active stroke and publishes a snapshot of the
// whole raster as the current payload.
func (s *Surface) PointerUp(id int) {
	s.endStroke(id)
}

// PointerCancel ends the active stroke the same way PointerUp does; the
// ink drawn so far stays on the raster and the snapshot is published.
func (s *Surface) PointerCancel(id int) {
	s.endStroke(id)
}

func (s *Surface) endStroke(id int) {
	if s.state != stateStroking || id != s.pointerID {
		return
	}
	s.state = stateIdle
	s.pointerID = 0

	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		internal.ErrorLog("signature: snapshot encode failed: %s", err.Error())
		return
	}
	s.published = buf.Bytes()
}

// Payload returns the published PNG for the last completed stroke
// sequence, or nil when nothing has been drawn since the last Clear.
// The payload is replaced wholesale after each completed sequence, never
// per point.
func (s *Surface) Payload() []byte {
	return s.published
}

// Raster exposes the current pixels for live preview blitting.
func (s *Surface) Raster() *image.RGBA {
	return s.dc.Image().(*image.RGBA)
}

// Size returns the logical dimensions the surface was initialized with.
func (s *Surface) Size() (width, height float64) {
	return s.width, s.height
}

// Ratio returns the pixel ratio of the backing raster.
func (s *Surface) Ratio() float64 {
	return s.ratio
}

// Stroking reports whether a pointer is currently being tracked.
func (s *Surface) Stroking() bool {
	return s.state == stateStroking
}
