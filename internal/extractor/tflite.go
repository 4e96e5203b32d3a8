//go:build tflite

package extractor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/tphakala/go-tflite"
)

// TFLite runs a frozen face-embedding model. The penultimate dense layer of the
// backbone must be the model's first output.
type TFLite struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	inputSize   int
	logger      *slog.Logger
}

// NewTFLite loads the model at path and allocates its tensors.
func NewTFLite(path string, threads int, logger *slog.Logger) (*TFLite, error) {
	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("cannot load model from path: %s", path)
	}

	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, _ interface{}) {
		logger.Error("tflite error", slog.String("message", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("cannot create interpreter")
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("tensor allocation failed: %v", status)
	}

	input := interpreter.GetInputTensor(0)
	if input == nil || input.NumDims() != 4 || input.Dim(1) != input.Dim(2) || input.Dim(3) != 3 {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("model input must be [1, size, size, 3]")
	}

	logger.Info("embedding model loaded",
		slog.String("path", path),
		slog.Int("input_size", input.Dim(1)),
		slog.Int("threads", threads),
	)

	return &TFLite{
		model:       model,
		options:     options,
		interpreter: interpreter,
		inputSize:   input.Dim(1),
		logger:      logger,
	}, nil
}

// Extract returns the raw feature vector of face.
// The interpreter is not safe for concurrent use, so calls are serialized.
func (t *TFLite) Extract(ctx context.Context, face image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tensor := Preprocess(face, t.inputSize)

	t.mu.Lock()
	defer t.mu.Unlock()

	input := t.interpreter.GetInputTensor(0)
	if input == nil {
		return nil, fmt.Errorf("cannot get input tensor")
	}
	copy(input.Float32s(), tensor)

	if status := t.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tensor invoke failed: %v", status)
	}

	output := t.interpreter.GetOutputTensor(0)
	if output == nil {
		return nil, fmt.Errorf("cannot get output tensor")
	}

	raw := output.Float32s()
	features := make([]float64, len(raw))
	for i, v := range raw {
		features[i] = float64(v)
	}
	return features, nil
}

// Close releases the interpreter and model.
func (t *TFLite) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.interpreter.Delete()
	t.options.Delete()
	t.model.Delete()
	return nil
}
