package ioadapter

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/go-pdf/fpdf"
	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/numeric"
)

// WriteHitScatterPDF renders the catalog points and the transformed
// hit points onto a single page, the "<image_index>_all_hits.pdf"
// diagnostic, an optional output. Failures are logged
// and swallowed: diagnostic rendering never aborts the pipeline.
func WriteHitScatterPDF(figuresDir, acquisitionBase, imageIndex string, catalog []numeric.Point, hits []numeric.Point) {
	path := filepath.Join(figuresDir, acquisitionBase, imageIndex+"_all_hits.pdf")
	if err := writeHitScatterPDF(path, catalog, hits); err != nil {
		log.Debug.Printf("ioadapter: skipping diagnostic PDF %s: %v", path, err)
	}
}

func writeHitScatterPDF(path string, catalog, hits []numeric.Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 12, fmt.Sprintf("catalog points: %d, hits: %d", len(catalog), len(hits)))
	pdf.Ln(16)

	const scale = 0.15
	pdf.SetDrawColor(180, 180, 180)
	for _, p := range catalog {
		drawDot(pdf, p, scale)
	}
	pdf.SetDrawColor(200, 40, 40)
	for _, p := range hits {
		drawDot(pdf, p, scale)
	}
	return pdf.OutputFileAndClose(path)
}

func drawDot(pdf *fpdf.Fpdf, p numeric.Point, scale float64) {
	x, y := p.C*scale+20, p.R*scale+40
	pdf.Line(x-1, y, x+1, y)
	pdf.Line(x, y-1, x, y+1)
}

// WriteHitHistogramsPDF writes the "<image_index>_hit_hists.pdf"
// diagnostic: a single page stating how many row and column residuals
// there are. It does not draw the histograms themselves. Failures are
// logged and swallowed.
func WriteHitHistogramsPDF(figuresDir, acquisitionBase, imageIndex string, residualsR, residualsC []float64) {
	path := filepath.Join(figuresDir, acquisitionBase, imageIndex+"_hit_hists.pdf")
	if err := writeHitHistogramsPDF(path, residualsR, residualsC); err != nil {
		log.Debug.Printf("ioadapter: skipping diagnostic PDF %s: %v", path, err)
	}
}

func writeHitHistogramsPDF(path string, residualsR, residualsC []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 12, fmt.Sprintf("residual_r n=%d, residual_c n=%d", len(residualsR), len(residualsC)))
	return pdf.OutputFileAndClose(path)
}
