package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet bundles the two embedded Go faces used on the card. FontSource
// is heavyweight, so one set is parsed per process and shared.
type fontSet struct {
	regular *text.FontSource
	bold    *text.FontSource
}

var (
	fontOnce    sync.Once
	sharedFonts *fontSet
	fontErr     error
)

func loadFonts() (*fontSet, error) {
	fontOnce.Do(func() {
		regular, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := text.NewFontSource(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		sharedFonts = &fontSet{regular: regular, bold: bold}
	})
	return sharedFonts, fontErr
}
