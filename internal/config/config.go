package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Extract ExtractConfig
	OCR     OCRConfig
	S3      S3Config
	Worker  WorkerConfig
	Export  ExportConfig
}

// ExtractConfig holds line-item extraction settings.
type ExtractConfig struct {
	// StrictMode forbids any speculative code inference: a code is emitted
	// only when a validator rule positively confirms grounding in
	// table-anchored text. Set once at startup, immutable for the run.
	StrictMode bool `mapstructure:"strict_mode"`

	// RejectionListPath points at the generic-phrase rejection list file.
	// An unreadable or malformed list is fatal at startup, never per
	// document.
	RejectionListPath string `mapstructure:"rejection_list_path"`
}

// OCRConfig holds acquisition adapter settings.
type OCRConfig struct {
	// AdapterTimeout bounds each single adapter attempt. A hung adapter is
	// treated like a failed one and the chain advances.
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout"`

	DocAI     DocAIConfig     `mapstructure:"docai"`
	Tesseract TesseractConfig `mapstructure:"tesseract"`
}

// DocAIConfig holds Google Document AI processor settings for the cloud OCR
// adapter. When ProcessorID is empty the adapter is left out of the chain.
type DocAIConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	Location        string `mapstructure:"location"`
	ProcessorID     string `mapstructure:"processor_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// TesseractConfig holds local OCR fallback settings.
type TesseractConfig struct {
	Binary    string `mapstructure:"binary"`
	Languages string `mapstructure:"languages"`
	DPI       int    `mapstructure:"dpi"`
}

// S3Config holds AWS S3 settings for document fetch and artifact upload.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// WorkerConfig holds batch worker settings.
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
}

// ExportConfig holds output export settings.
type ExportConfig struct {
	Format string `mapstructure:"format"` // json | csv | xlsx
}

// Load reads configuration from environment variables with the BILLSCAN_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Extraction defaults
	v.SetDefault("extract.strict_mode", true)
	v.SetDefault("extract.rejection_list_path", "")

	// OCR defaults
	v.SetDefault("ocr.adapter_timeout", "45s")
	v.SetDefault("ocr.docai.project_id", "")
	v.SetDefault("ocr.docai.location", "us")
	v.SetDefault("ocr.docai.processor_id", "")
	v.SetDefault("ocr.docai.credentials_file", "")
	v.SetDefault("ocr.tesseract.binary", "tesseract")
	v.SetDefault("ocr.tesseract.languages", "eng")
	v.SetDefault("ocr.tesseract.dpi", 300)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "billscan-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Worker defaults
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.job_timeout", "5m")

	// Export defaults
	v.SetDefault("export.format", "json")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Worker.Concurrency < 1 {
		return nil, fmt.Errorf("worker.concurrency must be at least 1, got %d", cfg.Worker.Concurrency)
	}
	if cfg.OCR.AdapterTimeout <= 0 {
		return nil, fmt.Errorf("ocr.adapter_timeout must be positive, got %s", cfg.OCR.AdapterTimeout)
	}

	return &cfg, nil
}
