package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkarsa/kwitansi"
	"github.com/inkarsa/kwitansi/internal"
	"github.com/inkarsa/kwitansi/internal/platform"
	"github.com/inkarsa/kwitansi/internal/signature"
)

// draft is the on-disk input for one receipt. Empty fields keep the
// form defaults, strokes replay onto the signature pad in order.
type draft struct {
	Date    string              `json:"date"`
	From    string              `json:"from"`
	Amount  string              `json:"amount"`
	Strokes [][]signature.Point `json:"strokes"`
}

type generateReceipt struct {
	flag *Flag
}

func NewGenerateReceipt(flag *Flag) *generateReceipt {
	return &generateReceipt{flag: flag}
}

func (gr *generateReceipt) processGenerateReceipt() error {
	if len(gr.flag.Drafts) < 1 {
		return gr.processSingleReceipt(gr.flag.Draft)
	}
	return gr.processBatchReceipt()
}

func (gr *generateReceipt) processBatchReceipt() error {
	internal.InfoLog("Starting draft processing with %d max workers\n", gr.flag.MaxConcurrent)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(gr.flag.MaxConcurrent)
	errChan := make(chan error, len(gr.flag.Drafts))

	for _, d := range gr.flag.Drafts {
		draftPath := d
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				if err := gr.processSingleReceipt(draftPath); err != nil {
					errChan <- fmt.Errorf("error processing %s: %w", draftPath, err)
					return err
				}
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		close(errChan)
		var errs []error
		for e := range errChan {
			errs = append(errs, e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("completed with %d errors: %v", len(errs), errors.Join(errs...))
		}
		return err
	}
	return nil
}

func draftName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readDraft(path string) (*draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file: %w", err)
	}
	var d draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft file: %w", err)
	}
	return &d, nil
}

func (gr *generateReceipt) processSingleReceipt(draftPath string) error {
	startTime := time.Now()

	d, err := readDraft(draftPath)
	if err != nil {
		return err
	}

	dir := filepath.Join(gr.flag.OutputDir, draftName(draftPath))
	internal.DebugLog("Writing exports to %s\n", dir)

	app, err := kwitansi.New(kwitansi.Config{
		Saver: platform.DirSaver{Dir: dir},
	})
	if err != nil {
		return fmt.Errorf("failed to set up receipt app: %w", err)
	}

	if d.Date != "" {
		app.SetField("date", d.Date)
	}
	if d.From != "" {
		app.SetField("from", d.From)
	}
	if d.Amount != "" {
		app.SetField("amount", d.Amount)
	}
	signature.Replay(app.Surface(), d.Strokes)

	if err := gr.exportDraft(app); err != nil {
		return err
	}

	internal.InfoLog("[SUMMARY] Processed %s in %v\n", draftPath, time.Since(startTime))
	return nil
}

func (gr *generateReceipt) exportDraft(app *kwitansi.App) error {
	switch gr.flag.Format {
	case formatPDF:
		return app.ExportPDF()
	case formatBoth:
		if err := app.ExportImage(); err != nil {
			return err
		}
		return app.ExportPDF()
	default:
		return app.ExportImage()
	}
}
