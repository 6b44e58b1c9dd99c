package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

func Render(w io.Writer, r *Report, format Format) error {
	if format == FormatCSV {
		return WriteCSV(w, r)
	}
	return WritePDF(w, r)
}

// WriteCSV writes each section as a title line, a header and its rows,
// separated by blank lines.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{r.Company})
	cw.Write([]string{r.Title, r.Subtitle, r.Generated.Format("2006-01-02 15:04")})
	for _, s := range r.Sections {
		cw.Write(nil)
		cw.Write([]string{s.Name})
		cw.Write(s.Columns)
		cw.WriteAll(s.Rows)
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF lays the report out on A4 portrait, one table per section.
func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(r.Company), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(r.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if r.Subtitle != "" {
		pdf.CellFormat(contentW, 5, tr(r.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Generated "+r.Generated.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	for _, s := range r.Sections {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 7, tr(s.Name), "", 1, "L", false, 0, "")
		if len(s.Columns) == 0 {
			continue
		}
		colW := contentW / float64(len(s.Columns))

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range s.Columns {
			pdf.CellFormat(colW, 6, tr(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		if len(s.Rows) == 0 {
			pdf.CellFormat(contentW, 6, "No entries", "1", 1, "C", false, 0, "")
		}
		for _, row := range s.Rows {
			for i, v := range row {
				align := "L"
				if i > 0 {
					align = "R"
				}
				pdf.CellFormat(colW, 6, tr(fit(pdf, v, colW)), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	return pdf.Output(w)
}

// fit truncates v so it prints inside a cell of width w.
func fit(pdf *fpdf.Fpdf, v string, w float64) string {
	if pdf.GetStringWidth(v) <= w-2 {
		return v
	}
	runes := []rune(v)
	for len(runes) > 1 && pdf.GetStringWidth(string(runes)+"...") > w-2 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
