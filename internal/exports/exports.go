// Package exports turns the rendered receipt card into downloadable or
// shareable artifacts: a PNG at display density, a single-page PDF whose
// physical size matches the on-screen card, and a native share payload.
// One operation may be in flight at a time; concurrent triggers are
// rejected rather than queued.
package exports

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/inkarsa/kwitansi/internal"
	"github.com/inkarsa/kwitansi/internal/platform"
	"github.com/inkarsa/kwitansi/internal/receipt"
)

// Operation identifies which pipeline run currently holds the busy
// guard.
type Operation int32

const (
	OpNone Operation = iota
	OpImage
	OpPDF
	OpShare
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "idle"
	case OpImage:
		return "image export"
	case OpPDF:
		return "document export"
	case OpShare:
		return "share"
	default:
		return fmt.Sprintf("operation(%d)", int32(o))
	}
}

// ErrBusy is returned when an export or share is triggered while another
// one is still in flight. The trigger has no other effect.
var ErrBusy = errors.New("an export or share is already in flight")

// pdfCaptureRatio is the minimum raster density for the document export.
// The embedded image is captured denser than the screen so the page
// stays sharp in print.
const pdfCaptureRatio = 3.0

const filenameLayout = "20060102-150405"

const (
	shareTitle = "Kwitansi"
	shareText  = "Kwitansi pembayaran"

	noticeImageFailed = "Gagal menyimpan gambar. Silakan coba lagi."
	noticePDFFailed   = "Gagal menyimpan PDF. Silakan coba lagi."
	noticeShareFailed = "Gagal membagikan kwitansi. Silakan coba lagi."
)

// CardRenderer is the slice of the renderer the pipeline needs.
type CardRenderer interface {
	Size() (width, height float64)
	RenderPNG(data receipt.FormData, signaturePNG []byte, ratio float64) ([]byte, error)
}

// Config carries the pipeline's collaborators. Renderer and Saver are
// required; the rest default to sane no-op implementations.
type Config struct {
	Renderer CardRenderer
	Saver    platform.Saver
	Sharer   platform.Sharer
	Notifier platform.Notifier

	// CanShare verifies a payload against the platform's acceptance
	// check before sharing. Nil means the platform has no such check
	// and the share call proceeds directly.
	CanShare func(platform.SharePayload) (bool, error)

	// PixelRatio reports the display's current pixel ratio. Nil means 1.
	PixelRatio func() float64

	// Clock stamps output filenames. Nil means time.Now.
	Clock func() time.Time
}

// Exporter runs the three export operations. All methods are safe for
// concurrent use; the busy guard admits one operation at a time.
type Exporter struct {
	renderer   CardRenderer
	saver      platform.Saver
	sharer     platform.Sharer
	notifier   platform.Notifier
	canShare   func(platform.SharePayload) (bool, error)
	pixelRatio func() float64
	clock      func() time.Time

	inflight atomic.Int32
}

func NewExporter(cfg Config) *Exporter {
	p := &Exporter{
		renderer:   cfg.Renderer,
		saver:      cfg.Saver,
		sharer:     cfg.Sharer,
		notifier:   cfg.Notifier,
		canShare:   cfg.CanShare,
		pixelRatio: cfg.PixelRatio,
		clock:      cfg.Clock,
	}
	if p.sharer == nil {
		p.sharer = platform.UnsupportedSharer{}
	}
	if p.notifier == nil {
		p.notifier = platform.LogNotifier{}
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

// InFlight returns the operation currently holding the busy guard.
func (p *Exporter) InFlight() Operation {
	return Operation(p.inflight.Load())
}

// Busy reports whether any operation is in flight.
func (p *Exporter) Busy() bool {
	return p.InFlight() != OpNone
}

// ExportImage renders the card at the display's pixel ratio and saves it
// as a timestamped PNG. Failures are logged, surfaced through the
// notifier, and returned; nothing is retried and no partial file is
// handed to the saver.
func (p *Exporter) ExportImage(data receipt.FormData, signaturePNG []byte) error {
	if err := p.begin(OpImage); err != nil {
		return err
	}
	defer p.end()

	id := uuid.NewString()
	internal.InfoLog("image export started id=%s", id)

	cardPNG, err := p.renderer.RenderPNG(data, signaturePNG, p.captureRatio(1))
	if err != nil {
		return p.fail(id, noticeImageFailed, fmt.Errorf("render card: %w", err))
	}
	name := p.filename("png")
	if err := p.saver.Save(name, cardPNG); err != nil {
		return p.fail(id, noticeImageFailed, fmt.Errorf("save image: %w", err))
	}

	internal.SuccessLog("image export finished id=%s file=%s", id, name)
	return nil
}

// ExportPDF renders the card denser than the screen, wraps it in a
// single-page document sized to the card's physical dimensions, and
// saves it as a timestamped PDF.
func (p *Exporter) ExportPDF(data receipt.FormData, signaturePNG []byte) error {
	if err := p.begin(OpPDF); err != nil {
		return err
	}
	defer p.end()

	id := uuid.NewString()
	internal.InfoLog("document export started id=%s", id)

	cardPNG, err := p.renderer.RenderPNG(data, signaturePNG, p.captureRatio(pdfCaptureRatio))
	if err != nil {
		return p.fail(id, noticePDFFailed, fmt.Errorf("render card: %w", err))
	}
	width, height := p.renderer.Size()
	doc, err := buildCardPDF(cardPNG, width, height)
	if err != nil {
		return p.fail(id, noticePDFFailed, fmt.Errorf("build document: %w", err))
	}
	name := p.filename("pdf")
	if err := p.saver.Save(name, doc); err != nil {
		return p.fail(id, noticePDFFailed, fmt.Errorf("save document: %w", err))
	}

	internal.SuccessLog("document export finished id=%s file=%s", id, name)
	return nil
}

// ShareImage renders the card at standard density, packages it as a
// named typed file, verifies the platform accepts it when an acceptance
// check exists, and invokes the native share flow. A dismissed share
// sheet counts as a failure and is surfaced like any other.
func (p *Exporter) ShareImage(ctx context.Context, data receipt.FormData, signaturePNG []byte) error {
	if err := p.begin(OpShare); err != nil {
		return err
	}
	defer p.end()

	id := uuid.NewString()
	internal.InfoLog("share started id=%s", id)

	cardPNG, err := p.renderer.RenderPNG(data, signaturePNG, 1)
	if err != nil {
		return p.fail(id, noticeShareFailed, fmt.Errorf("render card: %w", err))
	}
	payload := platform.SharePayload{
		Filename: p.filename("png"),
		MIME:     "image/png",
		Data:     cardPNG,
		Title:    shareTitle,
		Text:     shareText,
	}
	if p.canShare != nil {
		ok, err := p.canShare(payload)
		if err != nil {
			return p.fail(id, noticeShareFailed, fmt.Errorf("share acceptance check: %w", err))
		}
		if !ok {
			return p.fail(id, noticeShareFailed, errors.New("platform rejected the share payload"))
		}
	}
	if err := p.sharer.Share(ctx, payload); err != nil {
		return p.fail(id, noticeShareFailed, fmt.Errorf("native share: %w", err))
	}

	internal.SuccessLog("share finished id=%s", id)
	return nil
}

func (p *Exporter) begin(op Operation) error {
	if !p.inflight.CompareAndSwap(int32(OpNone), int32(op)) {
		internal.WarningLog("%s skipped: %s still in flight", op, p.InFlight())
		return ErrBusy
	}
	return nil
}

func (p *Exporter) end() {
	p.inflight.Store(int32(OpNone))
}

func (p *Exporter) fail(id, notice string, err error) error {
	internal.ErrorLog("export id=%s failed: %s", id, err.Error())
	p.notifier.Notify(notice)
	return err
}

func (p *Exporter) captureRatio(floor float64) float64 {
	ratio := 1.0
	if p.pixelRatio != nil {
		ratio = p.pixelRatio()
	}
	if ratio < floor {
		ratio = floor
	}
	return ratio
}

func (p *Exporter) filename(ext string) string {
	return fmt.Sprintf("kwitansi-%s.%s", p.clock().Format(filenameLayout), ext)
}
