// Package render draws the receipt card into an offscreen raster. The
// same renderer backs the live preview and every export path, so what the
// user sees is pixel for pixel what gets saved.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/gogpu/gg"

	"github.com/inkarsa/kwitansi/internal/receipt"
)

// Logical card dimensions in density-independent units. Rasters are this
// size multiplied by the requested pixel ratio.
const (
	CardWidth  = 640.0
	CardHeight = 400.0
)

const (
	cardPadding      = 32.0
	cardCornerRadius = 12.0

	titleBaseline   = 72.0
	dividerY        = 92.0
	titleSize       = 28.0
	labelSize       = 15.0
	valueSize       = 17.0
	captionSize     = 13.0
	labelX          = cardPadding
	valueX          = 210.0
	firstRowY       = 148.0
	rowSpacing      = 48.0
	signatureBoxX   = 384.0
	signatureBoxY   = 244.0
	signatureBoxW   = 224.0
	signatureBoxH   = 100.0
	signatureInset  = 4.0
	captionBaseline = 366.0
)

const (
	cardBackground = "#ffffff"
	cardBorder     = "#e5e7eb"
	headingColor   = "#111827"
	labelColor     = "#6b7280"
	valueColor     = "#111827"
	boxBorderColor = "#9ca3af"
	captionColor   = "#6b7280"
)

const (
	cardTitle            = "KWITANSI"
	signatureCaption     = "Tanda Tangan"
	signaturePlaceholder = "Belum ditandatangani"
)

// Renderer lays out the receipt card. It is stateless between calls;
// every Render starts from a blank raster.
type Renderer struct {
	fonts *fontSet
}

// NewRenderer parses the embedded fonts and returns a renderer ready for
// use from any goroutine.
func NewRenderer() (*Renderer, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("load embedded fonts: %w", err)
	}
	return &Renderer{fonts: f}, nil
}

// Size returns the card's logical dimensions.
func (r *Renderer) Size() (width, height float64) {
	return CardWidth, CardHeight
}

// Render draws the card for the given form data and optional signature
// payload at the given pixel ratio. Ratios below 1 are clamped to 1. The
// signature payload, when present, must be an encoded PNG; it is fitted
// into the signature slot preserving its aspect ratio.
func (r *Renderer) Render(data receipt.FormData, signaturePNG []byte, ratio float64) (*image.RGBA, error) {
	if ratio < 1 {
		ratio = 1
	}
	pxW := int(CardWidth*ratio + 0.5)
	pxH := int(CardHeight*ratio + 0.5)
	dc := gg.NewContext(pxW, pxH)
	dc.ClearWithColor(gg.Hex(cardBackground))

	// Text rendering bypasses the context matrix, so all layout math is
	// done in device pixels here instead of a Scale transform.
	dc.SetHexColor(cardBorder)
	dc.SetLineWidth(1 * ratio)
	dc.DrawRoundedRectangle(0.5*ratio, 0.5*ratio, (CardWidth-1)*ratio, (CardHeight-1)*ratio, cardCornerRadius*ratio)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("draw card border: %w", err)
	}

	dc.SetFont(r.fonts.bold.Face(titleSize * ratio))
	dc.SetHexColor(headingColor)
	dc.DrawStringAnchored(cardTitle, CardWidth/2*ratio, titleBaseline*ratio, 0.5, 0)

	dc.SetHexColor(cardBorder)
	dc.SetLineWidth(1 * ratio)
	dc.DrawLine(cardPadding*ratio, dividerY*ratio, (CardWidth-cardPadding)*ratio, dividerY*ratio)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("draw divider: %w", err)
	}

	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Tanggal", data.DisplayDate(), false},
		{"Diterima dari", data.DisplayFrom(), false},
		{"Jumlah", data.DisplayAmount(), true},
	}
	for i, row := range rows {
		baseline := (firstRowY + float64(i)*rowSpacing) * ratio
		dc.SetFont(r.fonts.regular.Face(labelSize * ratio))
		dc.SetHexColor(labelColor)
		dc.DrawString(row.label, labelX*ratio, baseline)

		face := r.fonts.regular
		if row.bold {
			face = r.fonts.bold
		}
		dc.SetFont(face.Face(valueSize * ratio))
		dc.SetHexColor(valueColor)
		dc.DrawString(row.value, valueX*ratio, baseline)
	}

	if err := r.drawSignatureSlot(dc, signaturePNG, ratio); err != nil {
		return nil, err
	}

	dc.SetFont(r.fonts.regular.Face(captionSize * ratio))
	dc.SetHexColor(captionColor)
	dc.DrawStringAnchored(signatureCaption, (signatureBoxX+signatureBoxW/2)*ratio, captionBaseline*ratio, 0.5, 0)

	return dc.Image().(*image.RGBA), nil
}

// RenderPNG renders the card and encodes it as a PNG.
func (r *Renderer) RenderPNG(data receipt.FormData, signaturePNG []byte, ratio float64) ([]byte, error) {
	img, err := r.Render(data, signaturePNG, ratio)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawSignatureSlot(dc *gg.Context, signaturePNG []byte, ratio float64) error {
	dc.SetHexColor(boxBorderColor)
	dc.SetLineWidth(1 * ratio)
	dc.SetDash(4*ratio, 3*ratio)
	dc.DrawRoundedRectangle(signatureBoxX*ratio, signatureBoxY*ratio, signatureBoxW*ratio, signatureBoxH*ratio, 6*ratio)
	err := dc.Stroke()
	dc.SetDash()
	if err != nil {
		return fmt.Errorf("draw signature slot: %w", err)
	}

	if signaturePNG == nil {
		dc.SetFont(r.fonts.regular.Face(captionSize * ratio))
		dc.SetHexColor(captionColor)
		dc.DrawStringAnchored(signaturePlaceholder,
			(signatureBoxX+signatureBoxW/2)*ratio,
			(signatureBoxY+signatureBoxH/2+captionSize*0.35)*ratio, 0.5, 0)
		return nil
	}

	img, err := png.Decode(bytes.NewReader(signaturePNG))
	if err != nil {
		return fmt.Errorf("decode signature payload: %w", err)
	}
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw == 0 || ih == 0 {
		return nil
	}
	boxW := (signatureBoxW - 2*signatureInset) * ratio
	boxH := (signatureBoxH - 2*signatureInset) * ratio
	scale := math.Min(boxW/iw, boxH/ih)
	dstW := iw * scale
	dstH := ih * scale
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             (signatureBoxX+signatureInset)*ratio + (boxW-dstW)/2,
		Y:             (signatureBoxY+signatureInset)*ratio + (boxH-dstH)/2,
		DstWidth:      dstW,
		DstHeight:     dstH,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
	})
	return nil
}
