// Package tesseract provides the gosseract-backed OCR engine.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/noah-isme/gema-answer-checker/pkg/ocr"
)

// Engine implements ocr.Engine with the gosseract client. A fresh client is
// created per call so the engine can be shared across concurrent requests.
type Engine struct {
	clientFactory func() *gosseract.Client
}

var _ ocr.Engine = (*Engine)(nil)

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single encoded image.
func (e *Engine) Recognize(ctx context.Context, image []byte, opts ocr.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts = opts.WithDefaults()
	opts.Notify(e.Name(), ocr.StageInitializing, 0)

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(opts.Languages...); err != nil {
		return "", fmt.Errorf("%w: set languages: %v", ocr.ErrEngine, err)
	}
	if err := c.SetWhitelist(opts.Whitelist); err != nil {
		return "", fmt.Errorf("%w: set whitelist: %v", ocr.ErrEngine, err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ocr.ErrEngine, err)
	}

	opts.Notify(e.Name(), ocr.StageRecognizing, 0.5)
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize text: %v", ocr.ErrEngine, err)
	}
	opts.Notify(e.Name(), ocr.StageDone, 1)

	return text, nil
}
