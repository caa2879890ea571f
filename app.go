// Package kwitansi composes the receipt form, signature surface, card
// renderer, and export pipeline into one application core. The browser
// build and the headless CLI both drive this type; neither carries
// domain logic of its own.
package kwitansi

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/inkarsa/kwitansi/internal/exports"
	"github.com/inkarsa/kwitansi/internal/platform"
	"github.com/inkarsa/kwitansi/internal/receipt"
	"github.com/inkarsa/kwitansi/internal/render"
	"github.com/inkarsa/kwitansi/internal/signature"
)

// Default logical size of the signature canvas. The browser build
// replaces it with the mounted element's layout size.
const (
	DefaultSurfaceWidth  = 560.0
	DefaultSurfaceHeight = 180.0
)

// Config wires the platform collaborators into the app. Zero values get
// sensible defaults: ratio 1, time.Now, log-only notifier, share
// unsupported.
type Config struct {
	SurfaceWidth  float64
	SurfaceHeight float64

	PixelRatio func() float64
	Clock      func() time.Time

	Saver    platform.Saver
	Sharer   platform.Sharer
	Notifier platform.Notifier
	CanShare func(platform.SharePayload) (bool, error)

	// Probe decides share support. It runs exactly once, here; the
	// result is frozen for the session.
	Probe platform.ProbeFunc
}

// App owns the session state: form fields, the signature surface, and
// the in-flight export guard (via the exporter).
type App struct {
	form     *receipt.Form
	surface  *signature.Surface
	renderer *render.Renderer
	exporter *exports.Exporter

	pixelRatio     func() float64
	shareSupported bool
}

func New(cfg Config) (*App, error) {
	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	if cfg.SurfaceWidth <= 0 {
		cfg.SurfaceWidth = DefaultSurfaceWidth
	}
	if cfg.SurfaceHeight <= 0 {
		cfg.SurfaceHeight = DefaultSurfaceHeight
	}
	ratio := cfg.PixelRatio
	if ratio == nil {
		ratio = func() float64 { return 1 }
	}

	app := &App{
		form:       receipt.NewForm(cfg.Clock),
		surface:    signature.NewSurface(cfg.SurfaceWidth, cfg.SurfaceHeight, ratio()),
		renderer:   renderer,
		pixelRatio: ratio,
	}
	app.exporter = exports.NewExporter(exports.Config{
		Renderer:   renderer,
		Saver:      cfg.Saver,
		Sharer:     cfg.Sharer,
		Notifier:   cfg.Notifier,
		CanShare:   cfg.CanShare,
		PixelRatio: ratio,
		Clock:      cfg.Clock,
	})
	if cfg.Probe != nil {
		app.shareSupported = cfg.Probe()
	}
	return app, nil
}

// SetField replaces one form field, preserving the others.
func (a *App) SetField(name, value string) {
	a.form.SetField(name, value)
}

// FormData returns a copy of the current field values.
func (a *App) FormData() receipt.FormData {
	return a.form.Data()
}

// Surface exposes the signature surface for pointer event wiring.
func (a *App) Surface() *signature.Surface {
	return a.surface
}

// ShareSupported reports the startup probe result. Environment changes
// after startup do not alter it.
func (a *App) ShareSupported() bool {
	return a.shareSupported
}

// Busy reports whether an export or share is in flight.
func (a *App) Busy() bool {
	return a.exporter.Busy()
}

// ResetForm restores the default field values and reinitializes the
// signature surface, dropping any published signature image. The two are
// owned separately but presented to the user as one action.
func (a *App) ResetForm() {
	a.form.Reset()
	w, h := a.surface.Size()
	a.surface.Clear(w, h, a.pixelRatio())
}

// Preview renders the receipt card at the given pixel ratio. The export
// paths render through the same code, so the preview matches the saved
// output.
func (a *App) Preview(ratio float64) (*image.RGBA, error) {
	return a.renderer.Render(a.form.Data(), a.surface.Payload(), ratio)
}

// ExportImage saves the card as a timestamped PNG.
func (a *App) ExportImage() error {
	return a.exporter.ExportImage(a.form.Data(), a.surface.Payload())
}

// ExportPDF saves the card as a single-page timestamped PDF.
func (a *App) ExportPDF() error {
	return a.exporter.ExportPDF(a.form.Data(), a.surface.Payload())
}

// ShareImage hands the card to the platform share flow.
func (a *App) ShareImage(ctx context.Context) error {
	return a.exporter.ShareImage(ctx, a.form.Data(), a.surface.Payload())
}
