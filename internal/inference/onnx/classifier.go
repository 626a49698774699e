// Package onnx implements the inference.Classifier port on top of ONNX
// Runtime. One Classifier wraps one model session; the document and origin
// classifiers each own an instance.
package onnx

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	xdraw "golang.org/x/image/draw"

	"veridoc/internal/inference"
)

// Config locates the model and describes its input contract.
type Config struct {
	// OrtLibraryPath points at the onnxruntime shared library. Empty means
	// the platform default search path.
	OrtLibraryPath string
	ModelPath      string
	// LabelsPath is a text file with one class label per line, in output
	// index order.
	LabelsPath string
	InputName  string
	OutputName string
	// InputSize is the square side length the model expects. Defaults to 224.
	InputSize int
}

// ImageNet normalization constants; both shipped models were fine-tuned from
// ImageNet backbones.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Classifier runs a single ONNX image-classification model.
type Classifier struct {
	cfg     Config
	labels  []string
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewClassifier loads the model and its label file. An error here means the
// model is unavailable; callers treat that as a legitimate runtime state and
// fall back per policy rather than aborting startup.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = 224
	}

	if err := initRuntime(cfg.OrtLibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", cfg.ModelPath, err)
	}

	return &Classifier{cfg: cfg, labels: labels, session: session}, nil
}

// Close releases the ONNX Runtime session.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		err := c.session.Destroy()
		c.session = nil
		return err
	}
	return nil
}

// Classify decodes the image, runs the model, and returns the top-ranked
// label. Remaining ranks are discarded; there is no ensembling.
func (c *Classifier) Classify(ctx context.Context, imageBytes []byte) (inference.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return inference.ClassificationResult{}, err
	}

	img, err := inference.DecodeRaster(imageBytes)
	if err != nil {
		return inference.ClassificationResult{}, err
	}

	input, err := c.tensorFromImage(img)
	if err != nil {
		return inference.ClassificationResult{}, err
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(c.labels))))
	if err != nil {
		return inference.ClassificationResult{}, fmt.Errorf("allocate output tensor: %w", err)
	}
	defer output.Destroy()

	// The session is not safe for concurrent Run calls.
	c.mu.Lock()
	session := c.session
	if session == nil {
		c.mu.Unlock()
		return inference.ClassificationResult{}, fmt.Errorf("classifier is closed")
	}
	err = session.Run([]ort.Value{input}, []ort.Value{output})
	c.mu.Unlock()
	if err != nil {
		return inference.ClassificationResult{}, fmt.Errorf("run model: %w", err)
	}

	ranked := rankScores(softmax(output.GetData()), c.labels)
	if len(ranked) == 0 {
		return inference.ClassificationResult{Label: inference.LabelUnknown}, nil
	}
	return ranked[0], nil
}

func (c *Classifier) tensorFromImage(img image.Image) (*ort.Tensor[float32], error) {
	size := c.cfg.InputSize
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	// NCHW float32 with per-channel normalization.
	data := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			idx := y*size + x
			data[idx] = (float32(r>>8)/255.0 - channelMean[0]) / channelStd[0]
			data[plane+idx] = (float32(g>>8)/255.0 - channelMean[1]) / channelStd[1]
			data[2*plane+idx] = (float32(b>>8)/255.0 - channelMean[2]) / channelStd[2]
		}
	}

	tensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	return tensor, nil
}

func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

func rankScores(scores []float32, labels []string) []inference.ClassificationResult {
	n := min(len(scores), len(labels))
	ranked := make([]inference.ClassificationResult, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, inference.ClassificationResult{
			Label:      labels[i],
			Confidence: float64(scores[i]),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label file %s is empty", path)
	}
	return labels, nil
}
