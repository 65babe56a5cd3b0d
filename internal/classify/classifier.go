// Package classify labels a canonical OCR result by document type. The
// label selects context-appropriate parsing rules downstream; the extractor
// tolerates a wrong label, so classification is best-effort by design and
// never fails closed.
package classify

import (
	"strings"

	"billscan/internal/domain"
)

// Input carries everything the classifier may inspect. Classification is a
// pure function over OCR token text plus filename heuristics; the raw buffer
// is accepted for interface stability but not currently consulted.
type Input struct {
	Bytes       []byte
	Filename    string
	ContentType string
	OCR         *domain.OCRResult
}

// keyword carries a phrase and its score weight for one document type.
type keyword struct {
	phrase string
	weight float64
}

var docTypeKeywords = map[domain.DocType][]keyword{
	domain.DocTypeEOB: {
		{"explanation of benefits", 3},
		{"this is not a bill", 3},
		{"allowed amount", 2},
		{"plan paid", 2},
		{"claim number", 1},
		{"deductible", 1},
	},
	domain.DocTypeBill: {
		{"itemized statement", 3},
		{"statement of account", 2},
		{"amount due", 2},
		{"patient responsibility", 2},
		{"pay this amount", 2},
		{"billing statement", 2},
		{"charges", 1},
	},
	domain.DocTypeInsuranceCard: {
		{"member id", 3},
		{"group number", 2},
		{"rxbin", 2},
		{"rxpcn", 2},
		{"copay", 1},
	},
	domain.DocTypeLetter: {
		{"dear ", 2},
		{"sincerely", 2},
		{"we are writing", 2},
		{"appeal", 1},
	},
	domain.DocTypePortal: {
		{"printed from", 2},
		{"mychart", 3},
		{"patient portal", 3},
		{"visit summary", 1},
	},
}

var filenameHints = map[domain.DocType][]string{
	domain.DocTypeEOB:           {"eob"},
	domain.DocTypeBill:          {"bill", "statement", "invoice"},
	domain.DocTypeInsuranceCard: {"card"},
	domain.DocTypeLetter:        {"letter", "denial"},
	domain.DocTypePortal:        {"portal", "export"},
}

// Classify scores the OCR text against per-type keyword sets and filename
// hints. It always returns a member of the closed DocType set; with no
// signal at all the result is UNKNOWN at zero confidence.
func Classify(input Input) domain.Classification {
	text := lowerText(input.OCR)
	name := strings.ToLower(input.Filename)

	scores := make(map[domain.DocType]float64, len(docTypeKeywords))
	for docType, kws := range docTypeKeywords {
		for _, kw := range kws {
			if strings.Contains(text, kw.phrase) {
				scores[docType] += kw.weight
			}
		}
		for _, hint := range filenameHints[docType] {
			if strings.Contains(name, hint) {
				scores[docType] += 1.5
			}
		}
	}

	var best domain.DocType
	var bestScore, totalScore float64
	for docType, score := range scores {
		totalScore += score
		if score > bestScore || (score == bestScore && docType < best) {
			best = docType
			bestScore = score
		}
	}

	if bestScore == 0 {
		return domain.Classification{DocType: domain.DocTypeUnknown, Confidence: 0}
	}

	// A weak signal still yields the best guess: the extractor degrades
	// gracefully on a wrong label, so refusing to classify helps nobody.
	return domain.Classification{DocType: best, Confidence: bestScore / (totalScore + 1)}
}

func lowerText(ocr *domain.OCRResult) string {
	if ocr == nil {
		return ""
	}
	var b strings.Builder
	for i := range ocr.Tokens {
		b.WriteString(ocr.Tokens[i].Text)
		b.WriteByte(' ')
	}
	for ti := range ocr.Tables {
		for _, row := range ocr.Tables[ti].Rows {
			for _, cell := range row {
				b.WriteString(cell.Text)
				b.WriteByte(' ')
			}
		}
	}
	return strings.ToLower(b.String())
}
