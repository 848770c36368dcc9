// Package ocr turns raster images into plain text.
package ocr

import (
	"context"
	"errors"
)

// DefaultLanguage is the Tesseract language model used when none is configured.
const DefaultLanguage = "eng"

// DefaultWhitelist restricts recognition to Latin letters, digits and common punctuation.
const DefaultWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,!?@#$%^&*()_+-=[]{}|;:\"'<>/ "

// ErrEngine indicates the OCR backend failed to process the image.
var ErrEngine = errors.New("ocr engine failure")

// Stage names a step of a recognition run.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageRecognizing  Stage = "recognizing"
	StageDone         Stage = "done"
)

// Event is a progress notification. Events are diagnostic only.
type Event struct {
	Engine   string
	Stage    Stage
	Progress float64
}

// Observer receives progress events.
type Observer func(Event)

// Options tune a single recognition run.
type Options struct {
	Languages []string
	Whitelist string
	Observer  Observer
}

// Engine recognizes text in encoded image bytes.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opts Options) (string, error)
}

// WithDefaults fills in the default language and whitelist.
func (o Options) WithDefaults() Options {
	if len(o.Languages) == 0 {
		o.Languages = []string{DefaultLanguage}
	}
	if o.Whitelist == "" {
		o.Whitelist = DefaultWhitelist
	}
	return o
}

// Notify forwards a progress event to the observer, if any.
func (o Options) Notify(engine string, stage Stage, progress float64) {
	if o.Observer == nil {
		return
	}
	o.Observer(Event{Engine: engine, Stage: stage, Progress: progress})
}
