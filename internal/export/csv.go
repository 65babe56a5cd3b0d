// Package export serializes extracted line items as plain structured
// records for downstream consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"billscan/internal/domain"
)

// BOM is the UTF-8 byte order mark, written for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Case ID",
	"Artifact ID",
	"Code",
	"Code System",
	"Description",
	"Units",
	"Charge",
	"Allowed",
	"Note",
	"Page",
	"OCR Confidence",
}

// Writer wraps csv.Writer for exporting line items as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteLineItems converts a batch of line items to CSV rows and writes them.
func (w *Writer) WriteLineItems(items []domain.LineItem) error {
	for i := range items {
		if err := w.csv.Write(lineItemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// lineItemToRow converts a single line item to a string slice. Unstructured
// rows leave the code columns empty; charges render as dollars with two
// decimals.
func lineItemToRow(li *domain.LineItem) []string {
	row := make([]string, len(columns))
	row[0] = li.CaseID.String()
	row[1] = li.ArtifactID.String()
	row[2] = li.Code
	row[3] = string(li.CodeSystem)
	row[4] = li.Description
	if li.Units > 0 {
		row[5] = strconv.FormatFloat(li.Units, 'f', -1, 64)
	}
	row[6] = centsToDollars(li.ChargeCents)
	if li.AllowedCents != 0 {
		row[7] = centsToDollars(li.AllowedCents)
	}
	row[8] = li.Note
	row[9] = strconv.Itoa(li.OCR.Page)
	row[10] = strconv.FormatFloat(li.OCR.Confidence, 'f', 2, 64)
	return row
}

func centsToDollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
