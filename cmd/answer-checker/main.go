package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/noah-isme/gema-answer-checker/pkg/ai"
	"github.com/noah-isme/gema-answer-checker/pkg/client"
	"github.com/noah-isme/gema-answer-checker/pkg/imaging"
)

var errUsage = errors.New("usage")

type options struct {
	server    string
	image     string
	model     string
	modelFile string
	student   string
	timeout   time.Duration
	maxWidth  int
	maxHeight int
	quality   int
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("answer-checker", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.server, "server", "s", client.DefaultBaseURL, "answer checker API base URL")
	flags.StringVarP(&opts.image, "image", "i", "", "photo or scan of the student's answer sheet")
	flags.StringVarP(&opts.model, "model", "m", "", "model answer text")
	flags.StringVar(&opts.modelFile, "model-file", "", "file containing the model answer")
	flags.StringVar(&opts.student, "student", "", "student answer text (skips OCR)")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "per-request timeout")
	flags.IntVar(&opts.maxWidth, "max-width", imaging.DefaultMaxWidth, "maximum width of the uploaded image")
	flags.IntVar(&opts.maxHeight, "max-height", imaging.DefaultMaxHeight, "maximum height of the uploaded image")
	flags.IntVar(&opts.quality, "quality", imaging.DefaultQuality, "JPEG quality of the uploaded image (1-100)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.image == "" && strings.TrimSpace(opts.student) == "" {
		fmt.Fprintln(stderr, "either --image or --student is required")
		flags.PrintDefaults()
		return options{}, errUsage
	}
	if opts.model != "" && opts.modelFile != "" {
		fmt.Fprintln(stderr, "--model and --model-file are mutually exclusive")
		return options{}, errUsage
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).Level(level).With().Timestamp().Logger()

	api := client.New(opts.server, client.WithTimeout(opts.timeout))

	student := strings.TrimSpace(opts.student)
	if student == "" {
		student, err = extract(ctx, api, opts, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Extracted answer:\n%s\n", student)
	}

	model, err := modelAnswer(opts)
	if err != nil {
		return err
	}
	if model == "" {
		fmt.Fprintln(stderr, "no model answer given (--model or --model-file), skipping evaluation")
		return nil
	}

	logger.Debug().Int("model_chars", len(model)).Int("student_chars", len(student)).Msg("comparing answers")
	score, err := api.CompareAnswers(ctx, model, student)
	if err != nil {
		return fmt.Errorf("compare answers: %w", err)
	}

	printScore(stdout, score)
	return nil
}

func extract(ctx context.Context, api *client.Client, opts options, logger zerolog.Logger) (string, error) {
	raw, err := os.ReadFile(opts.image)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	detected := mimetype.Detect(raw)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("please upload an image file (got %s)", detected.String())
	}

	normalizer := imaging.NewNormalizer(
		imaging.WithMaxDimensions(opts.maxWidth, opts.maxHeight),
		imaging.WithQuality(opts.quality),
	)
	normalized, err := normalizer.Normalize(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("normalize image: %w", err)
	}
	logger.Debug().
		Str("source_format", normalized.SourceFormat).
		Int("source_width", normalized.SourceWidth).
		Int("source_height", normalized.SourceHeight).
		Int("width", normalized.Width).
		Int("height", normalized.Height).
		Int("bytes", len(normalized.Data)).
		Msg("image normalized")

	text, err := api.ExtractText(ctx, normalized.Data, normalized.MediaType)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func modelAnswer(opts options) (string, error) {
	if opts.modelFile == "" {
		return strings.TrimSpace(opts.model), nil
	}
	data, err := os.ReadFile(opts.modelFile)
	if err != nil {
		return "", fmt.Errorf("read model answer: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printScore(w io.Writer, score ai.RubricScore) {
	fmt.Fprintf(w, "\nScore: %g/10\n\n", score.Score)
	fmt.Fprintln(w, "Feedback:")
	fmt.Fprintf(w, "  Content accuracy:   %s\n", score.Feedback.ContentAccuracy)
	fmt.Fprintf(w, "  Completeness:       %s\n", score.Feedback.Completeness)
	fmt.Fprintf(w, "  Clarity:            %s\n", score.Feedback.Clarity)
	fmt.Fprintf(w, "  Technical accuracy: %s\n", score.Feedback.TechnicalAccuracy)
	if len(score.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggestions:")
	for _, suggestion := range score.Suggestions {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}
}
