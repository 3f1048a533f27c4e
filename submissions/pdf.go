package submissions

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// pdfTitle is the printable export's heading per form type.
func pdfTitle(ft FormType) string {
	switch ft {
	case Passport:
		return "Passport Application Details"
	case BirthCertificate:
		return "Birth Certificate Request Details"
	case Company:
		return "Company Registration Details"
	case SoleProprietorship:
		return "Sole Proprietorship Registration Details"
	}
	return "Submission Details"
}

// ExportPDF renders the printable summary of one submission: a heading per
// form type, the status and submission date, and the variant's field
// table. Identity and audit columns never appear (they are not summary
// fields) and file/signature fields are skipped.
func ExportPDF(s Submission) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, pdfTitle(s.FormType))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", s.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Submission Date: %s", formatTimestamp(s.CreatedAt)))
	pdf.Ln(10)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(52, 152, 219)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(60, 8, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(120, 8, "Value", "1", 1, "L", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	for _, f := range s.SummaryFields() {
		if f.File {
			continue
		}
		value := f.Value
		if value == "" {
			value = "Not provided"
		}
		pdf.CellFormat(60, 8, f.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 8, value, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFFileName names the download after the record it summarizes.
func PDFFileName(s Submission) string {
	return fmt.Sprintf("%s_%s.pdf", s.FormType, s.ID)
}
