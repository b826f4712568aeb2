//go:build !ocr

package extract

import (
	"context"
	"errors"
)

// ErrRecognitionUnavailable is returned when recognition is requested but
// the binary was built without the "ocr" tag. Rebuild with -tags ocr and a
// system Tesseract install to enable it.
var ErrRecognitionUnavailable = errors.New("image recognition not enabled; rebuild with -tags ocr")

// OCRClient is the stub recognition client compiled without the "ocr" tag.
type OCRClient struct{}

// NewOCRClient reports that recognition support is not compiled in.
func NewOCRClient(lang string) (*OCRClient, error) {
	return nil, ErrRecognitionUnavailable
}

// RecognizeImage always fails on the stub client.
func (c *OCRClient) RecognizeImage(ctx context.Context, imageData []byte) (string, error) {
	return "", ErrRecognitionUnavailable
}

// Close is a no-op, safe on a nil client.
func (c *OCRClient) Close() error {
	return nil
}
