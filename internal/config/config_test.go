package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Extract.StrictMode)
	assert.Empty(t, cfg.Extract.RejectionListPath)
	assert.Equal(t, 45*time.Second, cfg.OCR.AdapterTimeout)
	assert.Equal(t, "us", cfg.OCR.DocAI.Location)
	assert.Empty(t, cfg.OCR.DocAI.ProcessorID)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract.Binary)
	assert.Equal(t, "eng", cfg.OCR.Tesseract.Languages)
	assert.Equal(t, 300, cfg.OCR.Tesseract.DPI)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Worker.JobTimeout)
	assert.Equal(t, "json", cfg.Export.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BILLSCAN_EXTRACT_STRICT_MODE", "false")
	t.Setenv("BILLSCAN_OCR_ADAPTER_TIMEOUT", "10s")
	t.Setenv("BILLSCAN_OCR_DOCAI_PROCESSOR_ID", "abc123")
	t.Setenv("BILLSCAN_WORKER_CONCURRENCY", "8")
	t.Setenv("BILLSCAN_EXPORT_FORMAT", "csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Extract.StrictMode)
	assert.Equal(t, 10*time.Second, cfg.OCR.AdapterTimeout)
	assert.Equal(t, "abc123", cfg.OCR.DocAI.ProcessorID)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, "csv", cfg.Export.Format)
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	t.Setenv("BILLSCAN_WORKER_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker.concurrency")
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("BILLSCAN_OCR_ADAPTER_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.adapter_timeout")
}
