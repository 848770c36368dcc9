package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/noah-isme/gema-answer-checker/pkg/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(t *testing.T, text string) []byte {
	t.Helper()
	small := image.NewRGBA(image.Rect(0, 0, 120, 24))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if text != "" {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(6, 17),
		}
		d.DrawString(text)
	}

	// 7x13 glyphs are too small for tesseract; upscale 4x.
	img := image.NewRGBA(image.Rect(0, 0, 480, 96))
	draw.NearestNeighbor.Scale(img, img.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	var stages []ocr.Stage
	engine := NewEngine()
	text, err := engine.Recognize(context.Background(), renderText(t, "Hello Answer"), ocr.Options{
		Observer: func(ev ocr.Event) { stages = append(stages, ev.Stage) },
	})
	require.NoError(t, err)

	got := strings.ToLower(text)
	require.Contains(t, got, "hello")
	require.Contains(t, got, "answer")
	require.Equal(t, []ocr.Stage{ocr.StageInitializing, ocr.StageRecognizing, ocr.StageDone}, stages)
}

func TestEngineBlankImage(t *testing.T) {
	ensureTesseractAvailable(t)

	text, err := NewEngine().Recognize(context.Background(), renderText(t, ""), ocr.Options{})
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(text))
}

func TestEngineHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Recognize(ctx, []byte("ignored"), ocr.Options{})
	require.ErrorIs(t, err, context.Canceled)
}
