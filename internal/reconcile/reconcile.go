// Package reconcile aggregates extracted charges and compares them against
// any page-declared total. Discrepancies are reported, never auto-corrected:
// the decision of what to do with a mismatch belongs to the caller.
package reconcile

import (
	"regexp"
	"strings"

	"billscan/internal/domain"
	"billscan/internal/money"
)

// summaryLabel matches line labels that name aggregates rather than billable
// items. Lines under these labels are excluded from line-item extraction and
// mined for the declared total instead.
var summaryLabel = regexp.MustCompile(`(?i)\b(total|subtotal|balance|amount due|amount owed|payments?|adjustments?|patient responsibility)\b`)

// IsSummaryLabel reports whether s names a totals/summary line.
func IsSummaryLabel(s string) bool {
	return summaryLabel.MatchString(s)
}

// Report is the reconciliation outcome for one extraction run.
type Report struct {
	SumCents      int64 `json:"sum_cents"`
	DeclaredCents int64 `json:"declared_cents,omitempty"`
	DeclaredFound bool  `json:"declared_found"`
	DeltaCents    int64 `json:"delta_cents,omitempty"`
	GrossMismatch bool  `json:"gross_mismatch"`
}

// Sum adds up the charges of all line items, structured and unstructured
// alike. It has no code-system awareness.
func Sum(items []domain.LineItem) int64 {
	var sum int64
	for i := range items {
		sum += items[i].ChargeCents
	}
	return sum
}

// Reconcile sums extracted charges and, when the document declares a total,
// flags a gross mismatch. The threshold is deliberately loose — extraction
// trades recall for precision, so small shortfalls are expected and only
// order-of-magnitude disagreements are flagged.
func Reconcile(items []domain.LineItem, ocr *domain.OCRResult) Report {
	r := Report{SumCents: Sum(items)}

	declared, ok := FindDeclaredTotal(ocr)
	if !ok {
		return r
	}
	r.DeclaredCents = declared
	r.DeclaredFound = true
	r.DeltaCents = r.SumCents - declared

	tolerance := declared / 10
	if tolerance < 500 {
		tolerance = 500
	}
	if r.DeltaCents > tolerance || r.DeltaCents < -tolerance {
		r.GrossMismatch = true
	}
	return r
}

// FindDeclaredTotal scans the OCR result for a stated document total: a
// monetary amount on a summary-labeled line or table row. When several are
// stated (subtotal, total, balance) the largest wins, which is the grand
// total on real bills.
func FindDeclaredTotal(ocr *domain.OCRResult) (int64, bool) {
	var best int64
	found := false

	consider := func(cents int64) {
		if cents <= 0 {
			return
		}
		if !found || cents > best {
			best = cents
			found = true
		}
	}

	// Table rows: summary label in one cell, amount in another.
	for ti := range ocr.Tables {
		for _, row := range ocr.Tables[ti].Rows {
			labeled := false
			for _, cell := range row {
				if IsSummaryLabel(cell.Text) {
					labeled = true
					break
				}
			}
			if !labeled {
				continue
			}
			for _, cell := range row {
				if cents, ok := money.FirstInText(cell.Text); ok {
					consider(cents)
				}
			}
		}
	}

	// Token stream: an amount within a short window after a summary label.
	// Labels like "Amount Due" arrive as separate tokens, so the previous
	// token is joined in before matching.
	const window = 4
	sinceLabel := window + 1
	lastPage := 0
	prevText := ""
	for i := range ocr.Tokens {
		tok := &ocr.Tokens[i]
		if tok.Page != lastPage {
			lastPage = tok.Page
			sinceLabel = window + 1
			prevText = ""
		}
		labeled := IsSummaryLabel(tok.Text) ||
			(prevText != "" && !IsSummaryLabel(prevText) && IsSummaryLabel(prevText+" "+tok.Text))
		prevText = tok.Text
		if labeled {
			sinceLabel = 0
			continue
		}
		sinceLabel++
		if sinceLabel <= window {
			if cents, ok := money.ParseCents(strings.TrimSpace(tok.Text)); ok {
				consider(cents)
			}
		}
	}

	return best, found
}
