// Command resolve runs the full resolution pipeline against a local image
// file and prints the verdict as JSON. Useful for model validation and for
// batch runs that never need the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"veridoc/internal/classify"
	"veridoc/internal/inference"
	"veridoc/internal/inference/onnx"
	"veridoc/internal/inference/tesseract"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/logger"
	"veridoc/internal/registry"
	"veridoc/internal/resolution"
	"veridoc/internal/textextract"
)

type cliOptions struct {
	imagePath string
	timeout   time.Duration
	noOCR     bool
	verbose   bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("resolve: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.imagePath, "image", "", "Document image to resolve (jpeg, png, gif, bmp, webp)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall resolution deadline")
	flag.BoolVar(&opts.noOCR, "no-ocr", false, "Skip the text extraction path")
	flag.BoolVar(&opts.verbose, "verbose", false, "Print the full session snapshot instead of just the verdict")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --image FILE [options]\n\nModels are located via the VERIDOC_* environment variables.\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.imagePath = strings.TrimSpace(opts.imagePath)
	if opts.imagePath == "" {
		flag.Usage()
		return opts, errors.New("missing required --image file")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg := config.FromEnv()
	log := logger.New()
	reg := registry.New()

	image, err := os.ReadFile(opts.imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	documents := classify.NewDocumentService(
		loadClassifier(cfg.Inference, cfg.Inference.DocumentModel, "document", log),
		classify.WithDocumentLogger(log),
	)
	origin := classify.NewOriginService(
		loadClassifier(cfg.Inference, cfg.Inference.OriginModel, "origin", log),
		classify.WithOriginLogger(log),
	)

	var recognizer inference.TextRecognizer
	if !opts.noOCR {
		recognizer = tesseract.NewRecognizer(tesseract.Config{
			Languages:      cfg.Inference.OCRLanguages,
			TessdataPrefix: cfg.Inference.TessdataPrefix,
		})
	}
	text := textextract.New(recognizer, textextract.NewExtractor(reg), textextract.WithLogger(log))

	service, err := resolution.New(documents, origin, text, reg,
		resolution.WithLogger(log),
		resolution.WithPathTimeout(cfg.Resolution.PathTimeout),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	sess := service.Begin(ctx, image)
	if _, err := sess.Wait(ctx); err != nil {
		return err
	}

	snap := sess.Snapshot()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if opts.verbose {
		return enc.Encode(snap)
	}
	return enc.Encode(struct {
		State  string                           `json:"state"`
		Result *resolution.PassportOriginResult `json:"result,omitempty"`
	}{
		State:  string(snap.State),
		Result: snap.Result,
	})
}

func loadClassifier(inf config.Inference, model config.Model, name string, log *slog.Logger) inference.Classifier {
	if model.Path == "" {
		return nil
	}
	classifier, err := onnx.NewClassifier(onnx.Config{
		OrtLibraryPath: inf.OrtLibraryPath,
		ModelPath:      model.Path,
		LabelsPath:     model.LabelsPath,
	})
	if err != nil {
		log.Warn("failed to load model, running on fallback", "model", name, "error", err)
		return nil
	}
	return classifier
}
