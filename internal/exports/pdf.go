package exports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/signintech/gopdf"
)

// Physical page sizing assumes the CSS convention of 96 logical units
// per inch. Real display densities vary, so the printed size is an
// approximation of the on-screen card, not a measured match.
const (
	logicalUnitsPerInch = 96.0
	mmPerInch           = 25.4
)

// PageSize converts the card's logical dimensions into the physical page
// rectangle in millimeters. The page comes out landscape exactly when
// the card is wider than it is tall.
func PageSize(width, height float64) gopdf.Rect {
	return gopdf.Rect{
		W: width * mmPerInch / logicalUnitsPerInch,
		H: height * mmPerInch / logicalUnitsPerInch,
	}
}

// buildCardPDF wraps one card raster in a single-page document. The
// image is stretched to cover the full page, which preserves the card's
// aspect ratio because the page itself is derived from the card's
// dimensions.
func buildCardPDF(cardPNG []byte, width, height float64) ([]byte, error) {
	if len(cardPNG) == 0 {
		return nil, errors.New("empty card image")
	}

	page := PageSize(width, height)
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitMM,
		PageSize: page,
	})

	holder, err := gopdf.ImageHolderByBytes(cardPNG)
	if err != nil {
		return nil, fmt.Errorf("create image holder: %w", err)
	}
	pdf.AddPageWithOption(gopdf.PageOption{PageSize: &page})
	if err := pdf.ImageByHolder(holder, 0, 0, &page); err != nil {
		return nil, fmt.Errorf("place card image: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return buf.Bytes(), nil
}
