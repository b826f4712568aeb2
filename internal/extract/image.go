package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageStrategy handles scanned report images. The input is decoded and
// re-encoded as PNG before recognition so Tesseract sees one consistent
// container regardless of the upload format.
type ImageStrategy struct {
	OCR *OCRClient
}

func (s *ImageStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	if s.OCR == nil {
		return nil, fmt.Errorf("%w: recognition engine unavailable", report.ErrExtractionFailure)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", report.ErrExtractionFailure, err)
	}

	payload := data
	if format != "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: re-encode image: %v", report.ErrExtractionFailure, err)
		}
		payload = buf.Bytes()
	}

	text, err := s.OCR.RecognizeImage(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrExtractionFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: recognition yielded no text", report.ErrExtractionFailure)
	}

	res := &report.ExtractionResult{Pages: 1, Recognized: true}
	res.Lines = appendLines(res.Lines, text, 1, recognizedConfidence)
	return res, nil
}
