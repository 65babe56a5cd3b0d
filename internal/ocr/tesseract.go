package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/port"
)

// LocalOCRAdapter shells out to the tesseract binary, the last-resort
// strategy when the text layer is absent and the cloud engine is
// unavailable. TSV output gives word-level boxes and confidences; tesseract
// detects no tables, which is valid — the extractor falls back to its
// token-stream pass.
type LocalOCRAdapter struct {
	binary    string
	languages string
	dpi       int
}

// NewLocalOCRAdapter creates the tesseract adapter.
func NewLocalOCRAdapter(cfg *config.TesseractConfig) *LocalOCRAdapter {
	binary := cfg.Binary
	if binary == "" {
		binary = "tesseract"
	}
	languages := cfg.Languages
	if languages == "" {
		languages = "eng"
	}
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 300
	}
	return &LocalOCRAdapter{binary: binary, languages: languages, dpi: dpi}
}

func (a *LocalOCRAdapter) Name() string { return "tesseract" }

func (a *LocalOCRAdapter) Attempt(ctx context.Context, input port.AcquireInput) (*domain.OCRResult, error) {
	pages, err := normalizePages(input)
	if err != nil {
		return nil, NewAdapterError(a.Name(), err)
	}

	result := &domain.OCRResult{
		Tokens:   []domain.Token{},
		Tables:   []domain.Table{},
		Metadata: domain.OCRMetadata{Engine: "tesseract", PageCount: len(pages)},
	}

	for i, png := range pages {
		tsv, err := a.runTesseract(ctx, png)
		if err != nil {
			return nil, NewAdapterError(a.Name(), fmt.Errorf("page %d: %w", i+1, err))
		}
		tokens, err := parseTSV(tsv, i+1)
		if err != nil {
			return nil, NewAdapterError(a.Name(), fmt.Errorf("page %d: %w", i+1, err))
		}
		result.Tokens = append(result.Tokens, tokens...)
	}
	return result, nil
}

func (a *LocalOCRAdapter) runTesseract(ctx context.Context, png []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.binary,
		"stdin", "stdout",
		"-l", a.languages,
		"--dpi", strconv.Itoa(a.dpi),
		"tsv",
	)
	cmd.Stdin = bytes.NewReader(png)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s: %w (%s)", a.binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// TSV column layout emitted by tesseract: level, page_num, block_num,
// par_num, line_num, word_num, left, top, width, height, conf, text.
const (
	tsvLevelWord = "5"
	tsvColumns   = 12
)

// parseTSV extracts word-level rows. Rows with negative confidence are
// layout artifacts and are dropped.
func parseTSV(tsv []byte, page int) ([]domain.Token, error) {
	var tokens []domain.Token
	lines := strings.Split(string(tsv), "\n")
	for li, line := range lines {
		if li == 0 || strings.TrimSpace(line) == "" {
			// Header row or trailing newline.
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < tsvColumns {
			return nil, fmt.Errorf("malformed tsv row %d: %d columns", li, len(fields))
		}
		if fields[0] != tsvLevelWord {
			continue
		}
		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}
		left, err1 := strconv.ParseFloat(fields[6], 64)
		top, err2 := strconv.ParseFloat(fields[7], 64)
		width, err3 := strconv.ParseFloat(fields[8], 64)
		height, err4 := strconv.ParseFloat(fields[9], 64)
		conf, err5 := strconv.ParseFloat(fields[10], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, fmt.Errorf("malformed tsv row %d: non-numeric geometry", li)
		}
		if conf < 0 {
			continue
		}
		tokens = append(tokens, domain.Token{
			Text:       text,
			Box:        &domain.BoundingBox{X: left, Y: top, W: width, H: height},
			Confidence: conf / 100,
			Page:       page,
		})
	}
	return tokens, nil
}
