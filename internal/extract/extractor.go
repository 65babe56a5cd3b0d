// Package extract implements table-aware line-item extraction over a
// canonical OCR result. Items come out either structured (code validated by
// the rule set) or unstructured (raw text and charge preserved, code
// absent); there is no guessing branch between the two.
package extract

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"billscan/internal/domain"
	"billscan/internal/money"
	"billscan/internal/reconcile"
	"billscan/internal/validator"
)

// Extractor turns classified OCR output into line items. It is pure and
// stateless across calls; one Extract call is bound to exactly one
// (artifactID, caseID) pair so concurrent runs can never cross-contaminate
// cases.
type Extractor struct {
	rules  *validator.RuleSet
	strict bool
}

// NewExtractor creates an Extractor. strict disables the speculative
// inference branch entirely; it is set once at pipeline startup.
func NewExtractor(rules *validator.RuleSet, strict bool) *Extractor {
	return &Extractor{rules: rules, strict: strict}
}

// Extract produces the ordered line items for one document. It never fails:
// absence of recognizable structure yields an empty list.
//
// The table-anchored pass handles every page with at least one detected
// table; the token-stream fallback covers the remaining pages. Presence of a
// detected table on the page is the boundary heuristic between the two
// paths.
func (e *Extractor) Extract(artifactID, caseID uuid.UUID, ocr *domain.OCRResult, docType domain.DocType) []domain.LineItem {
	items := []domain.LineItem{}
	if ocr == nil {
		return items
	}

	tablePages := make(map[int]bool)
	for i := range ocr.Tables {
		tablePages[ocr.Tables[i].Page] = true
	}

	for i := range ocr.Tables {
		items = append(items, e.tablePass(artifactID, caseID, &ocr.Tables[i], docType)...)
	}

	for _, line := range groupLines(ocr.Tokens) {
		if len(line) == 0 || tablePages[line[0].Page] {
			continue
		}
		if item, ok := e.tokenPass(artifactID, caseID, line, docType); ok {
			items = append(items, item)
		}
	}

	return items
}

// tablePass walks a detected table row by row. A row is charge-bearing when
// some cell parses as money; a candidate code is accepted only when it was
// matched from the same row as that charge — a stray code-shaped number
// elsewhere on the page is never promoted.
func (e *Extractor) tablePass(artifactID, caseID uuid.UUID, table *domain.Table, docType domain.DocType) []domain.LineItem {
	var items []domain.LineItem

	for ri := range table.Rows {
		row := table.Rows[ri]

		var moneyCells []int
		var moneyCents []int64
		var descCells []int
		units := 0.0
		for ci := range row {
			text := strings.TrimSpace(row[ci].Text)
			if text == "" {
				continue
			}
			if cents, ok := money.ParseCents(text); ok {
				moneyCells = append(moneyCells, ci)
				moneyCents = append(moneyCents, cents)
				continue
			}
			if n, err := strconv.Atoi(text); err == nil && n > 0 && n < 1000 {
				units = float64(n)
				continue
			}
			descCells = append(descCells, ci)
		}

		// Header rows and spacer rows carry no charge; totals rows belong
		// to the reconciler, not the item list.
		if len(moneyCells) == 0 {
			continue
		}
		// Joining all non-amount cells keeps a code printed in its own
		// column adjacent to the description it labels.
		descWords := make([]string, 0, len(descCells))
		for _, ci := range descCells {
			descWords = append(descWords, strings.Fields(row[ci].Text)...)
		}
		descText := strings.Join(descWords, " ")
		if reconcile.IsSummaryLabel(descText) {
			continue
		}

		charge := moneyCents[0]
		var allowed int64
		if docType == domain.DocTypeEOB && len(moneyCents) > 1 {
			// EOB rows print billed then allowed amounts in column order.
			allowed = moneyCents[1]
		} else if docType != domain.DocTypeEOB {
			// On itemized bills the charge is the last amount column.
			charge = moneyCents[len(moneyCents)-1]
		}

		cells := []*domain.Cell{}
		for _, ci := range descCells {
			cells = append(cells, &row[ci])
		}
		for _, ci := range moneyCells {
			cells = append(cells, &row[ci])
		}
		prov := provenanceFromCells(table.Page, cells)

		item := domain.LineItem{
			ArtifactID:   artifactID,
			CaseID:       caseID,
			ChargeCents:  charge,
			AllowedCents: allowed,
			Units:        units,
			OCR:          prov,
		}

		code, system, rest, accepted := e.resolveRowCandidate(descText)
		if accepted {
			item.Code = code
			item.CodeSystem = system
			item.Description = rest
		} else {
			item.Note = domain.NoteUnstructuredRow
			item.Description = descText
		}
		items = append(items, item)
	}

	return items
}

// resolveRowCandidate finds the first code-shaped word in a description cell
// and runs it through the rule chain. The words before the candidate form
// the preceding span the generic-phrase rule judges.
func (e *Extractor) resolveRowCandidate(descText string) (code string, system domain.CodeSystem, rest string, accepted bool) {
	words := strings.Fields(descText)
	for i, w := range words {
		if !validator.MatchesCPTShape(w) && !validator.MatchesHCPCSShape(w) {
			continue
		}
		following := ""
		if i+1 < len(words) {
			following = words[i+1]
		}
		cc := validator.CodeContext{
			Candidate:    w,
			Following:    following,
			Preceding:    strings.Join(words[:i], " "),
			RowHasAmount: true,
		}
		decision := e.rules.Validate(cc)
		if decision.Accepted {
			remainder := append(append([]string{}, words[:i]...), words[i+1:]...)
			return w, decision.System, strings.Join(remainder, " "), true
		}
		// NO_VALID_CODE: in strict mode this is terminal. Outside strict
		// mode a speculative heuristic hook may run; the current rule set
		// defines none, so both modes degrade to an unstructured row.
		if !e.strict {
			if specCode, specSystem, ok := e.speculate(cc); ok {
				remainder := append(append([]string{}, words[:i]...), words[i+1:]...)
				return specCode, specSystem, strings.Join(remainder, " "), true
			}
		}
		break
	}
	return "", "", "", false
}

// speculate is the extension point for non-strict experimentation. It is
// intentionally empty: guessing is excluded by construction, and any future
// heuristic added here still never runs under strict mode.
func (e *Extractor) speculate(_ validator.CodeContext) (string, domain.CodeSystem, bool) {
	return "", "", false
}

// tokenPass handles a single visual line on a page without detected tables —
// the "Office visit $150.00" shape. A code is accepted only when the rule
// chain confirms it against the words of this same line; otherwise a
// charge-bearing line degrades to an unstructured row.
func (e *Extractor) tokenPass(artifactID, caseID uuid.UUID, line []domain.Token, docType domain.DocType) (domain.LineItem, bool) {
	moneyIdx := -1
	var cents []int64
	for i := range line {
		if c, ok := money.ParseCents(strings.TrimSpace(line[i].Text)); ok {
			if moneyIdx < 0 {
				moneyIdx = i
			}
			cents = append(cents, c)
		}
	}
	if moneyIdx < 0 {
		// Not charge-bearing; narrative text is not a line item.
		return domain.LineItem{}, false
	}

	descTokens := line[:moneyIdx]
	descWords := make([]string, 0, len(descTokens))
	for i := range descTokens {
		if t := strings.TrimSpace(descTokens[i].Text); t != "" {
			descWords = append(descWords, t)
		}
	}
	descText := strings.Join(descWords, " ")
	if reconcile.IsSummaryLabel(descText) {
		return domain.LineItem{}, false
	}

	charge := cents[0]
	var allowed int64
	if docType == domain.DocTypeEOB && len(cents) > 1 {
		allowed = cents[1]
	}

	item := domain.LineItem{
		ArtifactID:   artifactID,
		CaseID:       caseID,
		ChargeCents:  charge,
		AllowedCents: allowed,
		OCR:          provenanceFromTokens(line[0].Page, line),
	}

	code, system, rest, accepted := e.resolveRowCandidate(descText)
	if accepted {
		item.Code = code
		item.CodeSystem = system
		item.Description = rest
	} else {
		item.Note = domain.NoteUnstructuredRow
		item.Description = descText
	}
	return item, true
}
