// Package certificate renders completion certificates as PDF.
package certificate

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	domain "playbook/internal/domain/certificate"
)

// Page geometry in points.
const (
	outerMargin = 20.0
	innerMargin = 30.0
	outerWidth  = 3.0
	innerWidth  = 0.5
)

var magenta = [3]int{216, 70, 147}

// Render writes c as a single A4 landscape page.
func Render(w io.Writer, c domain.Content) error {
	return render(w, c, true)
}

func render(w io.Writer, c domain.Content, compress bool) error {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(domain.Heading, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width, height := pdf.GetPageSize()

	pdf.SetDrawColor(magenta[0], magenta[1], magenta[2])
	pdf.SetLineWidth(outerWidth)
	pdf.Rect(outerMargin, outerMargin, width-2*outerMargin, height-2*outerMargin, "D")
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(innerWidth)
	pdf.Rect(innerMargin, innerMargin, width-2*innerMargin, height-2*innerMargin, "D")

	line := func(y float64, style string, size float64, rgb [3]int, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
		pdf.SetXY(innerMargin, y)
		pdf.CellFormat(width-2*innerMargin, size+4, tr(text), "", 0, "C", false, 0, "")
	}
	black := [3]int{0, 0, 0}
	grey := [3]int{110, 110, 110}

	line(110, "B", 36, black, c.Heading)
	line(160, "", 16, magenta, c.Subtitle)
	line(220, "", 16, grey, c.Preamble)
	line(260, "B", 32, black, c.Name)
	line(320, "", 16, grey, c.Body)
	line(350, "B", 18, black, c.Programme)
	line(420, "", 14, grey, c.Date)
	line(height-70, "", 10, grey, c.Footer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	return nil
}
