package exports

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/inkarsa/kwitansi/internal/platform"
	"github.com/inkarsa/kwitansi/internal/receipt"
)

type fakeRenderer struct {
	width     float64
	height    float64
	lastRatio float64
	err       error
}

func (f *fakeRenderer) Size() (float64, float64) {
	return f.width, f.height
}

func (f *fakeRenderer) RenderPNG(_ receipt.FormData, _ []byte, ratio float64) ([]byte, error) {
	f.lastRatio = ratio
	if f.err != nil {
		return nil, f.err
	}
	return tinyPNG(), nil
}

type captureSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
	block chan struct{}
}

func (s *captureSaver) Save(name string, data []byte) error {
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = data
	return nil
}

func (s *captureSaver) saved() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

type fakeSharer struct {
	called  bool
	payload platform.SharePayload
	err     error
}

func (s *fakeSharer) Share(_ context.Context, p platform.SharePayload) error {
	s.called = true
	s.payload = p
	return s.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (n *fakeNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, msg)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notices...)
}

func tinyPNG() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	return buf.Bytes()
}

func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 10, 11, 12, 0, time.UTC)
}

func newTestExporter(r CardRenderer, s platform.Saver, sh platform.Sharer, n platform.Notifier) *Exporter {
	return NewExporter(Config{
		Renderer: r,
		Saver:    s,
		Sharer:   sh,
		Notifier: n,
		Clock:    fixedClock,
	})
}

func TestExportImageSavesTimestampedPNG(t *testing.T) {
	renderer := &fakeRenderer{width: 640, height: 400}
	saver := &captureSaver{}
	notifier := &fakeNotifier{}
	p := newTestExporter(renderer, saver, nil, notifier)

	if err := p.ExportImage(receipt.FormData{}, nil); err != nil {
		t.Fatalf("ExportImage: %v", err)
	}
	files := saver.saved()
	data, ok := files["kwitansi-20260825-101112.png"]
	if !ok {
		t.Fatalf("saved files = %v; want kwitansi-20260825-101112.png", keys(files))
	}
	if !bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("saved file is not a PNG")
	}
	if len(notifier.all()) != 0 {
		t.Fatalf("success notified the user: %v", notifier.all())
	}
	if got := p.InFlight(); got != OpNone {
		t.Fatalf("InFlight after success = %v; want idle", got)
	}
}

func TestExportImageUsesDisplayRatio(t *testing.T) {
	renderer := &fakeRenderer{width: 640, height: 400}
	p := NewExporter(Config{
		Renderer:   renderer,
		Saver:      &captureSaver{},
		Clock:      fixedClock,
		PixelRatio: func() float64 { return 2.5 },
	})
	if err := p.ExportImage(receipt.FormData{}, nil); err != nil {
		t.Fatalf("ExportImage: %v", err)
	}
	if renderer.lastRatio != 2.5 {
		t.Fatalf("render ratio = %v; want 2.5", renderer.lastRatio)
	}
}

func TestExportPDFSavesDocument(t *testing.T) {
	renderer := &fakeRenderer{width: 640, height: 400}
	saver := &captureSaver{}
	p := newTestExporter(renderer, saver, nil, &fakeNotifier{})

	if err := p.ExportPDF(receipt.FormData{}, nil); err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	data, ok := saver.saved()["kwitansi-20260825-101112.pdf"]
	if !ok {
		t.Fatalf("saved files = %v; want kwitansi-20260825-101112.pdf", keys(saver.saved()))
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("saved file is not a PDF")
	}

	// 640x400 logical units at 96 per inch is exactly 480x300 points.
	w, h := mediaBox(t, data)
	if w < 479.5 || w > 480.5 || h < 299.5 || h > 300.5 {
		t.Fatalf("page media box = %.2fx%.2f pt; want 480x300", w, h)
	}
	if w <= h {
		t.Fatalf("page is not landscape: %.2fx%.2f", w, h)
	}
}

func TestExportPDFCaptureDensityFloor(t *testing.T) {
	cases := []struct {
		name    string
		display float64
		want    float64
	}{
		{"standard display raised to floor", 1, 3},
		{"dense display kept", 4, 4},
	}
	for _, c := range cases {
		renderer := &fakeRenderer{width: 640, height: 400}
		p := NewExporter(Config{
			Renderer:   renderer,
			Saver:      &captureSaver{},
			Clock:      fixedClock,
			PixelRatio: func() float64 { return c.display },
		})
		if err := p.ExportPDF(receipt.FormData{}, nil); err != nil {
			t.Fatalf("%s: ExportPDF: %v", c.name, err)
		}
		if renderer.lastRatio != c.want {
			t.Fatalf("%s: render ratio = %v; want %v", c.name, renderer.lastRatio, c.want)
		}
	}
}

func TestPageSize(t *testing.T) {
	cases := []struct {
		name      string
		width     float64
		height    float64
		wantW     float64
		wantH     float64
		landscape bool
	}{
		{"card dimensions", 640, 400, 169.333, 105.833, true},
		{"portrait layout", 300, 500, 79.375, 132.292, false},
	}
	for _, c := range cases {
		page := PageSize(c.width, c.height)
		if diff := page.W - c.wantW; diff < -0.01 || diff > 0.01 {
			t.Fatalf("%s: page width = %.3f; want %.3f", c.name, page.W, c.wantW)
		}
		if diff := page.H - c.wantH; diff < -0.01 || diff > 0.01 {
			t.Fatalf("%s: page height = %.3f; want %.3f", c.name, page.H, c.wantH)
		}
		if got := page.W > page.H; got != c.landscape {
			t.Fatalf("%s: landscape = %v; want %v", c.name, got, c.landscape)
		}
	}
}

func TestShareImagePayload(t *testing.T) {
	sharer := &fakeSharer{}
	notifier := &fakeNotifier{}
	p := newTestExporter(&fakeRenderer{width: 640, height: 400}, &captureSaver{}, sharer, notifier)

	if err := p.ShareImage(context.Background(), receipt.FormData{}, nil); err != nil {
		t.Fatalf("ShareImage: %v", err)
	}
	if !sharer.called {
		t.Fatalf("sharer was never invoked")
	}
	got := sharer.payload
	if got.Filename != "kwitansi-20260825-101112.png" {
		t.Fatalf("payload filename = %q", got.Filename)
	}
	if got.MIME != "image/png" {
		t.Fatalf("payload MIME = %q; want image/png", got.MIME)
	}
	if got.Title != "Kwitansi" {
		t.Fatalf("payload title = %q", got.Title)
	}
	if len(got.Data) == 0 {
		t.Fatalf("payload has no data")
	}
	if len(notifier.all()) != 0 {
		t.Fatalf("successful share notified the user: %v", notifier.all())
	}
}

func TestShareImageAcceptanceCheck(t *testing.T) {
	cases := []struct {
		name      string
		canShare  func(platform.SharePayload) (bool, error)
		wantShare bool
	}{
		{"accepted", func(platform.SharePayload) (bool, error) { return true, nil }, true},
		{"rejected", func(platform.SharePayload) (bool, error) { return false, nil }, false},
		{"check throws", func(platform.SharePayload) (bool, error) { return false, errors.New("boom") }, false},
	}
	for _, c := range cases {
		sharer := &fakeSharer{}
		notifier := &fakeNotifier{}
		p := NewExporter(Config{
			Renderer: &fakeRenderer{width: 640, height: 400},
			Saver:    &captureSaver{},
			Sharer:   sharer,
			Notifier: notifier,
			CanShare: c.canShare,
			Clock:    fixedClock,
		})
		err := p.ShareImage(context.Background(), receipt.FormData{}, nil)
		if c.wantShare {
			if err != nil {
				t.Fatalf("%s: ShareImage: %v", c.name, err)
			}
			if !sharer.called {
				t.Fatalf("%s: sharer not invoked", c.name)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if sharer.called {
			t.Fatalf("%s: sharer invoked despite failed acceptance check", c.name)
		}
		if n := notifier.all(); len(n) != 1 || n[0] != noticeShareFailed {
			t.Fatalf("%s: notices = %v; want single share failure notice", c.name, n)
		}
		if p.InFlight() != OpNone {
			t.Fatalf("%s: busy guard not released", c.name)
		}
	}
}

func TestShareImageDismissedSheet(t *testing.T) {
	sharer := &fakeSharer{err: errors.New("AbortError: share canceled")}
	notifier := &fakeNotifier{}
	p := newTestExporter(&fakeRenderer{width: 640, height: 400}, &captureSaver{}, sharer, notifier)

	if err := p.ShareImage(context.Background(), receipt.FormData{}, nil); err == nil {
		t.Fatalf("expected error for dismissed share sheet")
	}
	if n := notifier.all(); len(n) != 1 || n[0] != noticeShareFailed {
		t.Fatalf("notices = %v; want single share failure notice", n)
	}
	if p.InFlight() != OpNone {
		t.Fatalf("busy guard not released after share failure")
	}
}

func TestFailurePathsNotifyAndRelease(t *testing.T) {
	boom := errors.New("render blew up")
	cases := []struct {
		name   string
		run    func(p *Exporter) error
		notice string
	}{
		{"image", func(p *Exporter) error { return p.ExportImage(receipt.FormData{}, nil) }, noticeImageFailed},
		{"pdf", func(p *Exporter) error { return p.ExportPDF(receipt.FormData{}, nil) }, noticePDFFailed},
		{"share", func(p *Exporter) error { return p.ShareImage(context.Background(), receipt.FormData{}, nil) }, noticeShareFailed},
	}
	for _, c := range cases {
		saver := &captureSaver{}
		notifier := &fakeNotifier{}
		p := newTestExporter(&fakeRenderer{width: 640, height: 400, err: boom}, saver, &fakeSharer{}, notifier)

		err := c.run(p)
		if !errors.Is(err, boom) {
			t.Fatalf("%s: error = %v; want wrapped render failure", c.name, err)
		}
		if n := notifier.all(); len(n) != 1 || n[0] != c.notice {
			t.Fatalf("%s: notices = %v; want %q", c.name, n, c.notice)
		}
		if len(saver.saved()) != 0 {
			t.Fatalf("%s: partial output persisted: %v", c.name, keys(saver.saved()))
		}
		if p.InFlight() != OpNone {
			t.Fatalf("%s: busy guard not released after failure", c.name)
		}
	}
}

func TestSaveFailureNotifies(t *testing.T) {
	saver := &captureSaver{err: errors.New("disk full")}
	notifier := &fakeNotifier{}
	p := newTestExporter(&fakeRenderer{width: 640, height: 400}, saver, nil, notifier)

	if err := p.ExportImage(receipt.FormData{}, nil); err == nil {
		t.Fatalf("expected save failure")
	}
	if n := notifier.all(); len(n) != 1 || n[0] != noticeImageFailed {
		t.Fatalf("notices = %v; want image failure notice", n)
	}
	if p.InFlight() != OpNone {
		t.Fatalf("busy guard not released")
	}
}

func TestSecondTriggerWhileBusy(t *testing.T) {
	saver := &captureSaver{block: make(chan struct{})}
	notifier := &fakeNotifier{}
	p := newTestExporter(&fakeRenderer{width: 640, height: 400}, saver, &fakeSharer{}, notifier)

	done := make(chan error, 1)
	go func() {
		done <- p.ExportImage(receipt.FormData{}, nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for p.InFlight() != OpImage {
		if time.Now().After(deadline) {
			t.Fatalf("pipeline never entered image export")
		}
		time.Sleep(time.Millisecond)
	}

	if err := p.ExportImage(receipt.FormData{}, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("second image trigger = %v; want ErrBusy", err)
	}
	if err := p.ExportPDF(receipt.FormData{}, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("pdf trigger while busy = %v; want ErrBusy", err)
	}
	if err := p.ShareImage(context.Background(), receipt.FormData{}, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("share trigger while busy = %v; want ErrBusy", err)
	}

	close(saver.block)
	if err := <-done; err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if p.InFlight() != OpNone {
		t.Fatalf("busy guard not released after completion")
	}
	if got := len(saver.saved()); got != 1 {
		t.Fatalf("saved %d files; want exactly 1", got)
	}
	if len(notifier.all()) != 0 {
		t.Fatalf("busy rejections notified the user: %v", notifier.all())
	}

	// Guard released, a fresh trigger goes through.
	if err := p.ExportPDF(receipt.FormData{}, nil); err != nil {
		t.Fatalf("export after release: %v", err)
	}
}

var mediaBoxRe = regexp.MustCompile(`/MediaBox\s*\[\s*0\s+0\s+([0-9.]+)\s+([0-9.]+)`)

func mediaBox(t *testing.T, pdf []byte) (w, h float64) {
	t.Helper()
	m := mediaBoxRe.FindSubmatch(pdf)
	if m == nil {
		t.Fatalf("no media box found in document")
	}
	w, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		t.Fatalf("parse media box width: %v", err)
	}
	h, err = strconv.ParseFloat(string(m[2]), 64)
	if err != nil {
		t.Fatalf("parse media box height: %v", err)
	}
	return w, h
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
