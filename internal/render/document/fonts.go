package document

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily names the embedded Go fonts inside every exported PDF. They are
// the fonts the PNG preview draws with, so both cover the same scripts.
const FontFamily = "gotext"

var fontFaces = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
	{"BI", gobolditalic.TTF},
}

// NewPDF returns an empty A4 landscape document in millimetres with the
// certificate fonts registered. Text is passed to it as UTF-8 unchanged.
func NewPDF() (*fpdf.Fpdf, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	for _, face := range fontFaces {
		pdf.AddUTF8FontFromBytes(FontFamily, face.style, face.ttf)
		// fpdf skips a font it cannot parse without recording an error.
		pdf.SetFont(FontFamily, face.style, 12)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register certificate fonts: %w", err)
	}
	return pdf, nil
}
