package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WEBP decoder

	"billscan/internal/domain"
	"billscan/internal/port"
)

// normalizePages converts any supported input into one PNG per page so the
// local OCR engine sees a uniform raster format. PDFs render every page;
// single-image formats produce one page.
func normalizePages(input port.AcquireInput) ([][]byte, error) {
	if len(input.Bytes) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	if input.ContentType == "application/pdf" {
		return renderPDFPages(input.Bytes)
	}

	img, err := decodeImage(input.Bytes, input.ContentType)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return [][]byte{buf.Bytes()}, nil
}

func renderPDFPages(data []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PDF page %d: %w", n+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// decodeImage decodes JPEG/PNG/TIFF/WEBP via the registered stdlib decoders
// and HEIC/HEIF via the pure-Go decoder, which the stdlib does not cover.
func decodeImage(data []byte, contentType string) (image.Image, error) {
	if isHEIC(data, contentType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// isHEIC sniffs the ftyp box brands iPhones write, since declared content
// types are unreliable for camera uploads.
func isHEIC(data []byte, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/heic" || ct == "image/heif" {
		return true
	}
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heif", "mif1", "msf1":
			return true
		}
	}
	return false
}
