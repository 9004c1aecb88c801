package pdf

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Render lays out contract text as a PDF document and returns its bytes.
func Render(content string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, "LEGAL CONTRACT DOCUMENT", "", 1, "C", false, 0, "")
	doc.Ln(10)

	// Core fonts are Latin-1 only; map curly quotes, dashes and similar
	// characters the model tends to emit.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Arial", "", 11)
	for _, line := range strings.Split(content, "\n") {
		doc.MultiCell(0, 8, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
