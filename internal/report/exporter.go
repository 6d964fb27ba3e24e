// Package report renders entry tables into downloadable PDF documents.
//
// The exporter only lays out cells it is given; totals and rates are
// computed by core.Summarize before rows are built.
package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const DefaultTitle = "Milk Entry Report"

// Exporter renders a title, one header row and one row per record, with
// equal column widths of pageWidth / (columns + 1).
type Exporter struct {
	orientation string
	pageSize    string
	fontFamily  string
	fontSize    float64
	rowHeight   float64
	titleWidth  float64
	compress    bool
}

type Option func(*Exporter)

// WithCompression toggles content stream compression. Uncompressed output
// keeps the drawn text readable in the raw bytes.
func WithCompression(on bool) Option {
	return func(e *Exporter) { e.compress = on }
}

// WithLandscape renders wide tables on landscape pages.
func WithLandscape() Option {
	return func(e *Exporter) { e.orientation = "L" }
}

func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		orientation: "P",
		pageSize:    "A4",
		fontFamily:  "Arial",
		fontSize:    12,
		rowHeight:   10,
		titleWidth:  200,
		compress:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportTable renders the table and returns the PDF bytes. Text is written
// in ISO-8859-1; the first cell outside that set aborts the export with an
// EncodingError.
func (x *Exporter) ExportTable(title string, columns []string, rows [][]string) ([]byte, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("export table: no columns")
	}

	enc := charmap.ISO8859_1.NewEncoder()
	encTitle, err := enc.String(title)
	if err != nil {
		return nil, &EncodingError{Row: -1, Column: -1, Value: title, Err: err}
	}
	header, err := encodeRow(enc.String, -1, columns)
	if err != nil {
		return nil, err
	}
	body := make([][]string, len(rows))
	for i, row := range rows {
		if body[i], err = encodeRow(enc.String, i, row); err != nil {
			return nil, err
		}
	}

	pdf := fpdf.New(x.orientation, "mm", x.pageSize, "")
	pdf.SetCompression(x.compress)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(x.fontFamily, "", x.fontSize)

	pdf.CellFormat(x.titleWidth, x.rowHeight, encTitle, "", 1, "C", false, 0, "")
	pdf.Ln(x.rowHeight)

	pageWidth, _ := pdf.GetPageSize()
	colWidth := pageWidth / float64(len(columns)+1)

	writeRow := func(cells []string) {
		for c := range columns {
			cell := ""
			if c < len(cells) {
				cell = cells[c]
			}
			pdf.CellFormat(colWidth, x.rowHeight, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	writeRow(header)
	for _, cells := range body {
		writeRow(cells)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeRow(encode func(string) (string, error), row int, cells []string) ([]string, error) {
	out := make([]string, len(cells))
	for c, cell := range cells {
		s, err := encode(cell)
		if err != nil {
			return nil, &EncodingError{Row: row, Column: c, Value: cell, Err: err}
		}
		out[c] = s
	}
	return out, nil
}
