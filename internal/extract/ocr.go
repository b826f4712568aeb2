//go:build ocr

package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRClient wraps the Tesseract engine for image recognition. Build with
// the "ocr" tag and a system Tesseract install to enable it; without the
// tag the stub in ocr_stub.go is compiled instead.
type OCRClient struct {
	client *gosseract.Client
}

// NewOCRClient creates a recognition client for the given language
// ("eng" when empty). Close it to release engine resources.
func NewOCRClient(lang string) (*OCRClient, error) {
	client := gosseract.NewClient()
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	return &OCRClient{client: client}, nil
}

// RecognizeImage runs recognition over PNG/JPEG/TIFF image bytes.
func (c *OCRClient) RecognizeImage(ctx context.Context, imageData []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases recognition resources.
func (c *OCRClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
