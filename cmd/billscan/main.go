// Command billscan extracts billable line items from scanned medical billing
// documents and writes them as JSON, CSV, or XLSX.
// Usage: billscan -in statement.pdf [-out items.csv] [-format csv]
// Inputs may also be s3://bucket/key URIs. Additional positional arguments
// are processed as a concurrent batch under one case.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/extract"
	"billscan/internal/export"
	"billscan/internal/ocr"
	"billscan/internal/port"
	"billscan/internal/service"
	s3storage "billscan/internal/storage/s3"
	"billscan/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input document: local path or s3://bucket/key")
	out := flag.String("out", "", "output path (default stdout)")
	format := flag.String("format", "", "output format: json | csv | xlsx (default from config)")
	caseFlag := flag.String("case", "", "case ID (default: new UUID)")
	flag.Parse()

	inputs := flag.Args()
	if *in != "" {
		inputs = append([]string{*in}, inputs...)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input documents given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rules, err := buildRuleSet(cfg)
	if err != nil {
		// Malformed rule configuration is fatal at startup, never per
		// document.
		return err
	}

	ctx := context.Background()

	adapters, err := buildAdapters(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.NewExtractionService(
		ocr.NewHybridAcquirer(adapters, cfg.OCR.AdapterTimeout),
		extract.NewExtractor(rules, cfg.Extract.StrictMode),
	)

	caseID := uuid.New()
	if *caseFlag != "" {
		caseID, err = uuid.Parse(*caseFlag)
		if err != nil {
			return fmt.Errorf("parsing -case: %w", err)
		}
	}

	jobs := make([]service.Job, 0, len(inputs))
	for _, input := range inputs {
		data, filename, err := readInput(ctx, cfg, input)
		if err != nil {
			return err
		}
		contentType := detectContentType(filename)
		if contentType == "" {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filename)
		}
		jobs = append(jobs, service.Job{
			ArtifactID: uuid.New(),
			CaseID:     caseID,
			Input: port.AcquireInput{
				Bytes:       data,
				ContentType: contentType,
				Filename:    filename,
			},
		})
	}

	worker := service.NewBatchWorker(svc, service.BatchConfig{
		Concurrency: cfg.Worker.Concurrency,
		JobTimeout:  cfg.Worker.JobTimeout,
	})
	results := make([]*service.ExtractionResult, 0, len(jobs))
	for _, jr := range worker.Run(ctx, jobs) {
		if jr.Err != nil {
			return fmt.Errorf("extracting %s: %w", jr.Job.Input.Filename, jr.Err)
		}
		results = append(results, jr.Result)
	}

	outFormat := cfg.Export.Format
	if *format != "" {
		outFormat = *format
	}
	return writeOutput(ctx, cfg, *out, outFormat, results)
}

func buildRuleSet(cfg *config.Config) (*validator.RuleSet, error) {
	phrases := validator.DefaultRejectionPhrases
	if cfg.Extract.RejectionListPath != "" {
		loaded, err := validator.LoadRejectionList(cfg.Extract.RejectionListPath)
		if err != nil {
			return nil, err
		}
		phrases = append(append([]string{}, phrases...), loaded...)
	}
	return validator.NewRuleSet(phrases)
}

func buildAdapters(ctx context.Context, cfg *config.Config) ([]port.OCRAdapter, error) {
	adapters := []port.OCRAdapter{ocr.NewEmbeddedTextAdapter()}
	if cfg.OCR.DocAI.ProcessorID != "" {
		cloud, err := ocr.NewCloudOCRAdapter(ctx, &cfg.OCR.DocAI)
		if err != nil {
			return nil, fmt.Errorf("building documentai adapter: %w", err)
		}
		adapters = append(adapters, cloud)
	}
	adapters = append(adapters, ocr.NewLocalOCRAdapter(&cfg.OCR.Tesseract))
	return adapters, nil
}

func readInput(ctx context.Context, cfg *config.Config, in string) ([]byte, string, error) {
	if strings.HasPrefix(in, "s3://") {
		bucket, key, err := s3storage.ParseURI(in)
		if err != nil {
			return nil, "", err
		}
		store, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("building s3 client: %w", err)
		}
		data, err := store.Download(ctx, bucket, key)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(key), nil
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return nil, "", fmt.Errorf("reading input: %w", err)
	}
	return data, filepath.Base(in), nil
}

func detectContentType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return ""
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		if _, ok := domain.AllowedContentTypes[ct]; ok {
			return ct
		}
	}
	// Extensions the platform mime table may not know (heic, webp on some
	// systems).
	switch domain.AllowedExtensions[ext] {
	case domain.FileTypePDF:
		return "application/pdf"
	case domain.FileTypeTIFF:
		return "image/tiff"
	case domain.FileTypeJPG:
		return "image/jpeg"
	case domain.FileTypePNG:
		return "image/png"
	case domain.FileTypeHEIC:
		return "image/heic"
	case domain.FileTypeWEBP:
		return "image/webp"
	}
	return ""
}

func writeOutput(ctx context.Context, cfg *config.Config, path, format string, results []*service.ExtractionResult) error {
	if strings.HasPrefix(path, "s3://") {
		return uploadOutput(ctx, cfg, path, format, results)
	}

	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return encodeOutput(w, format, results)
}

// uploadOutput publishes the encoded result as an artifact next to the case's
// source documents.
func uploadOutput(ctx context.Context, cfg *config.Config, uri, format string, results []*service.ExtractionResult) error {
	bucket, key, err := s3storage.ParseURI(uri)
	if err != nil {
		return err
	}
	store, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("building s3 client: %w", err)
	}

	var buf bytes.Buffer
	if err := encodeOutput(&buf, format, results); err != nil {
		return err
	}

	contentType := "application/json"
	switch format {
	case "csv":
		contentType = "text/csv"
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	uploaded, err := store.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        &buf,
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	log.Printf("main: uploaded results to %s", uploaded.Location)
	return nil
}

func encodeOutput(w io.Writer, format string, results []*service.ExtractionResult) error {
	var items []domain.LineItem
	for _, r := range results {
		items = append(items, r.Items...)
	}

	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	case "csv":
		if _, err := w.Write(export.BOM); err != nil {
			return err
		}
		cw := export.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteLineItems(items); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	case "xlsx":
		return export.WriteXLSX(w, items)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
