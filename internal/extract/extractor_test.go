package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/validator"
)

var (
	testArtifactID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testCaseID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newTestExtractor(t *testing.T, strict bool) *Extractor {
	t.Helper()
	return NewExtractor(validator.NewDefaultRuleSet(), strict)
}

func tokenLine(page int, words ...string) []domain.Token {
	tokens := make([]domain.Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, domain.Token{Text: w, Confidence: 0.9, Page: page})
	}
	return tokens
}

func cellRow(texts ...string) []domain.Cell {
	row := make([]domain.Cell, 0, len(texts))
	for _, t := range texts {
		row = append(row, domain.Cell{Text: t, Confidence: 0.9})
	}
	return row
}

func TestExtractUnstructuredTokenLine(t *testing.T) {
	// "Office visit $150.00" with no table must degrade to exactly one
	// unstructured row, never a guessed code.
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tokens:   tokenLine(1, "Office", "visit", "$150.00"),
		Metadata: domain.OCRMetadata{Engine: "tesseract", PageCount: 1},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)

	item := items[0]
	assert.Empty(t, item.Code)
	assert.Equal(t, domain.NoteUnstructuredRow, item.Note)
	assert.Contains(t, item.Description, "Office visit")
	assert.Equal(t, int64(15000), item.ChargeCents)
	assert.False(t, item.Structured())
	assert.Equal(t, testArtifactID, item.ArtifactID)
	assert.Equal(t, testCaseID, item.CaseID)
	assert.Equal(t, 1, item.OCR.Page)
}

func TestExtractStructuredCPTRow(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("85025 COMPLETE BLOOD COUNT", "$47.25")},
		}},
		Metadata: domain.OCRMetadata{Engine: "documentai", PageCount: 1},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "85025", item.Code)
	assert.Equal(t, domain.CodeSystemCPT, item.CodeSystem)
	assert.Equal(t, "COMPLETE BLOOD COUNT", item.Description)
	assert.Equal(t, int64(4725), item.ChargeCents)
	assert.Empty(t, item.Note)
	assert.True(t, item.Structured())
}

func TestExtractStructuredHCPCSRow(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("J1200 DIPHENHYDRAMINE", "$45.75")},
		}},
		Metadata: domain.OCRMetadata{Engine: "documentai", PageCount: 1},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "J1200", item.Code)
	assert.Equal(t, domain.CodeSystemHCPCS, item.CodeSystem)
	assert.Equal(t, int64(4575), item.ChargeCents)
	assert.True(t, item.Structured())
}

func TestExtractRoomChargeStaysUnstructured(t *testing.T) {
	// "02491" is five digits but sits under a room/board phrase; promoting it
	// would invent a procedure code the document never stated.
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("SEMI-PRIV 02491 ROOM CHARGE", "$1,250.00")},
		}},
		Metadata: domain.OCRMetadata{Engine: "documentai", PageCount: 1},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)

	item := items[0]
	assert.Empty(t, item.Code)
	assert.Equal(t, domain.NoteUnstructuredRow, item.Note)
	assert.Equal(t, int64(125000), item.ChargeCents)
	assert.Equal(t, "SEMI-PRIV 02491 ROOM CHARGE", item.Description)
}

func TestExtractCodeInOwnColumn(t *testing.T) {
	// Some statements print the code and the description in separate columns.
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("85025", "COMPLETE BLOOD COUNT", "$47.25")},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)
	assert.Equal(t, "85025", items[0].Code)
	assert.Equal(t, domain.CodeSystemCPT, items[0].CodeSystem)
	assert.Equal(t, "COMPLETE BLOOD COUNT", items[0].Description)
}

func TestExtractCodeAndNoteAreExclusive(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{
				cellRow("85025 COMPLETE BLOOD COUNT", "$47.25"),
				cellRow("J1200 DIPHENHYDRAMINE", "$45.75"),
				cellRow("SEMI-PRIV 02491 ROOM CHARGE", "$1,250.00"),
			},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 3)
	for _, item := range items {
		hasCode := item.Code != ""
		hasNote := item.Note != ""
		assert.NotEqual(t, hasCode, hasNote, "exactly one of code/note must be set: %+v", item)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tokens: tokenLine(1, "Office", "visit", "$150.00"),
		Tables: []domain.Table{{
			Page: 2,
			Rows: [][]domain.Cell{cellRow("85025 COMPLETE BLOOD COUNT", "$47.25")},
		}},
	}

	first, err := json.Marshal(e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill))
	require.NoError(t, err)
	second, err := json.Marshal(e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractEmptyInput(t *testing.T) {
	e := newTestExtractor(t, true)

	items := e.Extract(testArtifactID, testCaseID, domain.EmptyOCRResult(), domain.DocTypeBill)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items = e.Extract(testArtifactID, testCaseID, nil, domain.DocTypeBill)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtractStrictAndNonStrictAgree(t *testing.T) {
	// No speculative heuristic is defined, so both modes must produce
	// identical output for rejected candidates.
	strict := newTestExtractor(t, true)
	loose := newTestExtractor(t, false)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("SEMI-PRIV 02491 ROOM CHARGE", "$1,250.00")},
		}},
	}

	assert.Equal(t,
		strict.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill),
		loose.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill))
}

func TestExtractSkipsTotalsRows(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{
				cellRow("85025 COMPLETE BLOOD COUNT", "$47.25"),
				cellRow("TOTAL", "$47.25"),
			},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)
	assert.Equal(t, "85025", items[0].Code)
}

func TestExtractSkipsHeaderRows(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{
				cellRow("DESCRIPTION", "AMOUNT"),
				cellRow("85025 COMPLETE BLOOD COUNT", "$47.25"),
			},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)
}

func TestExtractEOBAllowedAmount(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("85025 COMPLETE BLOOD COUNT", "$47.25", "$32.10")},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeEOB)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4725), items[0].ChargeCents)
	assert.Equal(t, int64(3210), items[0].AllowedCents)
}

func TestExtractUnitsColumn(t *testing.T) {
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("J1200 DIPHENHYDRAMINE", "2", "$45.75")},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 1)
	assert.Equal(t, 2.0, items[0].Units)
}

func TestExtractTablePageSuppressesTokenPass(t *testing.T) {
	// Tokens on a page with a detected table would double-report the same
	// rows; only tableless pages get the token-stream fallback.
	e := newTestExtractor(t, true)
	ocr := &domain.OCRResult{
		Tokens: append(
			tokenLine(1, "85025", "COMPLETE", "BLOOD", "COUNT", "$47.25"),
			tokenLine(2, "Office", "visit", "$150.00")...,
		),
		Tables: []domain.Table{{
			Page: 1,
			Rows: [][]domain.Cell{cellRow("85025 COMPLETE BLOOD COUNT", "$47.25")},
		}},
	}

	items := e.Extract(testArtifactID, testCaseID, ocr, domain.DocTypeBill)
	require.Len(t, items, 2)
	assert.Equal(t, "85025", items[0].Code)
	assert.Equal(t, domain.NoteUnstructuredRow, items[1].Note)
	assert.Equal(t, 2, items[1].OCR.Page)
}

func TestGroupLinesBoxless(t *testing.T) {
	tokens := append(
		tokenLine(1, "Office", "visit", "$150.00"),
		tokenLine(1, "Lab", "work", "$47.25")...,
	)
	lines := groupLines(tokens)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 3)
	assert.Len(t, lines[1], 3)
}

func TestGroupLinesVerticalGap(t *testing.T) {
	box := func(y float64) *domain.BoundingBox {
		return &domain.BoundingBox{X: 10, Y: y, W: 50, H: 12}
	}
	tokens := []domain.Token{
		{Text: "Office", Box: box(100), Page: 1},
		{Text: "visit", Box: box(101), Page: 1},
		{Text: "$150.00", Box: box(99), Page: 1},
		{Text: "Lab", Box: box(140), Page: 1},
		{Text: "$47.25", Box: box(141), Page: 1},
	}
	lines := groupLines(tokens)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 3)
	assert.Len(t, lines[1], 2)
}
