package recognize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// transcribePrompt asks a vision model for a plain transcription. Cross-
// border receipts mix English and Spanish, so the model is told to keep
// both verbatim rather than translate.
const transcribePrompt = `Transcribe all text visible in this receipt image.

Rules:
- Output the text exactly as printed, one receipt line per output line,
  top to bottom.
- Keep the original language (English or Spanish) and the original
  punctuation, including currency symbols, separators, and labels like
  TOTAL, IVA, TAX, PROPINA.
- Do not translate, summarize, interpret, or reformat anything.
- Do not wrap the output in markdown or add any commentary.`

// preparePNG normalizes an uploaded document into PNG bytes the vision
// models accept: PDFs are rendered, HEIC photos decoded, other formats
// re-encoded.
func preparePNG(data []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == "application/pdf" {
		return renderPDFPage(data)
	}
	if mimeType == "image/png" && !sniffHEIC(data) {
		return data, nil
	}
	return decodeToPNG(data, mimeType)
}

// renderPDFPage rasterizes the first page; receipts are single-page in
// practice.
func renderPDFPage(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	return encodePNG(img)
}

func decodeToPNG(data []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if sniffHEIC(data) || strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// sniffHEIC checks for the ftyp box brands iPhones write; the stdlib
// image package cannot decode them.
func sniffHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
